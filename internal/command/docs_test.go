package command

import (
	"reflect"
	"sort"
	"testing"
)

func TestRegistryGet(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		found bool
	}{
		{"GET", true},
		{"get", true},
		{"HGETALL", true},
		{"USE", true},
		{"NONEXISTENT_CMD_XYZ", false},
		{"", false},
	}

	for _, tt := range tests {
		doc := reg.Get(tt.name)
		if (doc != nil) != tt.found {
			t.Errorf("Get(%q) = %v, want found=%v", tt.name, doc, tt.found)
		}
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	all := reg.GetCommands("")
	if len(all) != reg.Len() {
		t.Errorf("GetCommands(\"\") returned %d names, Len() = %d", len(all), reg.Len())
	}
	if !sort.StringsAreSorted(all) {
		t.Error("Command names are not sorted")
	}

	got := reg.GetCommands("hget")
	expected := []string{"HGET", "HGETALL"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("GetCommands(hget) = %v, want %v", got, expected)
	}
	if got := reg.GetCommands("zzzz"); got != nil {
		t.Errorf("GetCommands(zzzz) = %v, want nil", got)
	}
}

func TestMergeServerCommands(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	get := *reg.Get("GET")
	before := reg.Len()

	reg.MergeServerCommands([]ServerCommand{
		{Name: "GET", Arity: 2, ACLCats: []string{"@read", "@string", "@fast"}},
		{Name: "newcmd", Arity: -2, ACLCats: []string{"@string", "@read"}},
		{Name: "MONITORX", Arity: 1, ACLCats: []string{"@admin", "@slow", "@dangerous"}},
		{
			Name:  "NEWPARENT",
			Arity: -1,
			Subcommands: []ServerCommand{
				{Name: "NEWPARENT CHILD", Arity: 3, ACLCats: []string{"@dangerous"}},
			},
		},
	})

	if !reflect.DeepEqual(*reg.Get("GET"), get) {
		t.Errorf("Documented command changed by merge: %+v", *reg.Get("GET"))
	}
	if reg.Len() != before+4 {
		t.Errorf("Len() = %d, want %d", reg.Len(), before+4)
	}

	tests := []struct {
		name      string
		arguments string
		group     string
		dangerous bool
	}{
		{"NEWCMD", "arg1 [arg ...]", "string", false},
		{"MONITORX", "", "admin", true},
		{"NEWPARENT", "[arg ...]", "", false},
		{"NEWPARENT CHILD", "arg1 arg2", "", false},
	}

	for _, tt := range tests {
		doc := reg.Get(tt.name)
		if doc == nil {
			t.Errorf("%s missing after merge", tt.name)
			continue
		}
		if doc.Arguments != tt.arguments || doc.Group != tt.group {
			t.Errorf("%s = %+v, want arguments %q group %q", tt.name, *doc, tt.arguments, tt.group)
		}
		if reg.IsDangerous(tt.name) != tt.dangerous {
			t.Errorf("IsDangerous(%s) = %v, want %v", tt.name, !tt.dangerous, tt.dangerous)
		}
	}

	if got := reg.GetCommands("newp"); !reflect.DeepEqual(got, []string{"NEWPARENT", "NEWPARENT CHILD"}) {
		t.Errorf("Merged commands missing from completion: %v", got)
	}
}

func TestIsDangerous(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"flushall", "FLUSHDB", "keys", "SwapDB"} {
		if !reg.IsDangerous(name) {
			t.Errorf("IsDangerous(%q) = false", name)
		}
	}
	for _, name := range []string{"GET", "set", "PING"} {
		if reg.IsDangerous(name) {
			t.Errorf("IsDangerous(%q) = true", name)
		}
	}
}

func TestArityHint(t *testing.T) {
	tests := []struct {
		arity int64
		want  string
	}{
		{0, ""},
		{1, ""},
		{2, "arg1"},
		{3, "arg1 arg2"},
		{5, "arg1 arg2 arg3 arg4"},
		{-1, "[arg ...]"},
		{-2, "arg1 [arg ...]"},
		{-3, "arg1 arg2 [arg ...]"},
	}
	for _, tc := range tests {
		if got := arityHint(tc.arity); got != tc.want {
			t.Errorf("arityHint(%d) = %q, want %q", tc.arity, got, tc.want)
		}
	}
}

func TestPrimaryACLGroup(t *testing.T) {
	tests := []struct {
		cats []string
		want string
	}{
		{[]string{"@read", "@string", "@fast"}, "string"},
		{[]string{"@write", "@list", "@slow", "@blocking"}, "list"},
		{[]string{"@read", "@fast"}, ""},
		{[]string{"@admin", "@slow", "@dangerous"}, "admin"},
		{[]string{"@connection"}, "connection"},
		{[]string{"@pubsub", "@slow"}, "pubsub"},
		{nil, ""},
	}
	for _, tc := range tests {
		if got := primaryACLGroup(tc.cats); got != tc.want {
			t.Errorf("primaryACLGroup(%v) = %q, want %q", tc.cats, got, tc.want)
		}
	}
}
