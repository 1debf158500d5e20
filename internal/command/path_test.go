package command

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cosmez/reapi-go/internal/serializer"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected *Invocation
		wantErr  bool
	}{
		{
			name:     "With Database",
			path:     "2/set/foo/bar",
			expected: &Invocation{DB: 2, Name: "set", Args: []string{"foo", "bar"}},
		},
		{
			name:     "Without Database",
			path:     "set/foo/bar",
			expected: &Invocation{DB: 0, Name: "set", Args: []string{"foo", "bar"}},
		},
		{
			name:     "Leading Slash",
			path:     "/1/get/foo",
			expected: &Invocation{DB: 1, Name: "get", Args: []string{"foo"}},
		},
		{
			name:     "No Arguments",
			path:     "ping",
			expected: &Invocation{Name: "ping"},
		},
		{
			name:     "Explicit Zero",
			path:     "0/dbsize",
			expected: &Invocation{Name: "dbsize"},
		},
		{
			name:     "Numeric Argument Stays Argument",
			path:     "incrby/counter/5",
			expected: &Invocation{Name: "incrby", Args: []string{"counter", "5"}},
		},
		{
			name:     "Numeric Command After Database",
			path:     "3/7",
			expected: &Invocation{DB: 3, Name: "7"},
		},
		{
			name:     "Trailing Slash Gives Empty Argument",
			path:     "set/foo/",
			expected: &Invocation{Name: "set", Args: []string{"foo", ""}},
		},
		{
			name:     "Escaped Slash",
			path:     "set/a%2Fb/hello%20world",
			expected: &Invocation{Name: "set", Args: []string{"a/b", "hello world"}},
		},
		{
			name:     "Signed Number Is A Command",
			path:     "-1/get",
			expected: &Invocation{Name: "-1", Args: []string{"get"}},
		},
		{
			name:     "Huge Database Index",
			path:     "99999999999999999999999/get/foo",
			expected: &Invocation{DB: math.MaxInt32, Name: "get", Args: []string{"foo"}},
		},
		{
			name:    "Empty",
			path:    "",
			wantErr: true,
		},
		{
			name:    "Only Slash",
			path:    "/",
			wantErr: true,
		},
		{
			name:    "Numeric Only Segment Is Always A Database",
			path:    "5",
			wantErr: true,
		},
		{
			name:    "Database Then Empty Command",
			path:    "5/",
			wantErr: true,
		},
		{
			name:    "Bad Escape",
			path:    "get/%zz",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPath) {
					t.Errorf("Expected ErrMalformedPath, got %v", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParsePath(%q) = %+v, want %+v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestEncodedArgs(t *testing.T) {
	t.Run("No Codec", func(t *testing.T) {
		inv := &Invocation{Name: "SET", Args: []string{"k", "v"}}
		args, err := inv.EncodedArgs()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(args, []string{"k", "v"}) {
			t.Errorf("Unexpected args %v", args)
		}
	})

	t.Run("SET Value Encoded", func(t *testing.T) {
		inv := &Invocation{Name: "set", Args: []string{"k", "value", "EX", "10"}, Codec: "base64"}
		args, err := inv.EncodedArgs()
		if err != nil {
			t.Fatal(err)
		}
		expected := []string{"k", "dmFsdWU=", "EX", "10"}
		if !reflect.DeepEqual(args, expected) {
			t.Errorf("EncodedArgs() = %v, want %v", args, expected)
		}
		if inv.Args[1] != "value" {
			t.Error("EncodedArgs must not modify the invocation")
		}
	})

	t.Run("Other Commands Untouched", func(t *testing.T) {
		inv := &Invocation{Name: "GET", Args: []string{"k"}, Codec: "gzip"}
		args, err := inv.EncodedArgs()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(args, []string{"k"}) {
			t.Errorf("Unexpected args %v", args)
		}
	})

	t.Run("Snappy Round Trip", func(t *testing.T) {
		inv := &Invocation{Name: "SET", Args: []string{"k", "hello"}, Codec: "snappy"}
		args, err := inv.EncodedArgs()
		if err != nil {
			t.Fatal(err)
		}
		codec, _ := serializer.Get("snappy")
		decoded, err := codec.Deserialize([]byte(args[1]))
		if err != nil || string(decoded) != "hello" {
			t.Errorf("Expected snappy round trip to hello, got %q (%v)", decoded, err)
		}
	})

	t.Run("Unknown Codec", func(t *testing.T) {
		inv := &Invocation{Name: "SET", Args: []string{"k", "v"}, Codec: "rot13"}
		if _, err := inv.EncodedArgs(); err == nil {
			t.Error("Expected error for unknown codec")
		}
	})
}
