package conn

import (
	"bufio"
	"fmt"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cosmez/reapi-go/internal/resp"
)

// setupMockConnection creates a Connection using net.Pipe for testing without a real server.
func setupMockConnection() (*Connection, net.Conn) {
	clientConn, serverConn := net.Pipe()
	c := newConnection(clientConn, Options{Host: "localhost", Port: 6379})
	return c, serverConn
}

type step struct {
	expect []string
	reply  string
}

// runServer answers each expected command with its scripted reply.
func runServer(server net.Conn, steps []step) <-chan error {
	done := make(chan error, 1)
	go func() {
		r := bufio.NewReader(server)
		for _, s := range steps {
			v, err := resp.ParseValue(r)
			if err != nil {
				done <- err
				return
			}
			arr, ok := v.(resp.RedisArray)
			if !ok {
				done <- fmt.Errorf("expected command array, got %T", v)
				return
			}
			got := make([]string, len(arr.Values))
			for i, a := range arr.Values {
				got[i] = a.StringValue()
			}
			if !reflect.DeepEqual(got, s.expect) {
				done <- fmt.Errorf("got command %q, want %q", got, s.expect)
				return
			}
			if _, err := server.Write([]byte(s.reply)); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	return done
}

func bulk(s string) string {
	return fmt.Sprintf("$%d\r\n%s\r\n", len(s), s)
}

func array(items ...string) string {
	return fmt.Sprintf("*%d\r\n%s", len(items), strings.Join(items, ""))
}

func wait(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("mock server: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("mock server did not finish")
	}
}

func TestDo(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	done := runServer(serverConn, []step{
		{expect: []string{"PING"}, reply: "+PONG\r\n"},
		{expect: []string{"GET", "missing"}, reply: "$-1\r\n"},
		{expect: []string{"NOPE"}, reply: "-ERR unknown command 'NOPE'\r\n"},
	})

	v, err := c.Do("PING")
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if v != (resp.RedisString{Value: "PONG"}) {
		t.Errorf("Expected PONG, got %#v", v)
	}

	v, err = c.Do("GET", "missing")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(resp.RedisNull); !ok {
		t.Errorf("Expected null, got %#v", v)
	}

	v, err = c.Do("NOPE")
	if err != nil {
		t.Fatalf("Error replies must not be transport errors: %v", err)
	}
	if errResp, ok := v.(resp.RedisError); !ok || errResp.Value != "ERR unknown command 'NOPE'" {
		t.Errorf("Expected error reply, got %#v", v)
	}

	wait(t, done)
}

func TestDo_DropsPushMessages(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	push := ">2\r\n" + bulk("invalidate") + array(bulk("user:1"))
	done := runServer(serverConn, []step{
		{expect: []string{"GET", "user:1"}, reply: push + bulk("ada")},
		{expect: []string{"PING"}, reply: push + push + "+PONG\r\n"},
	})

	v, err := c.Do("GET", "user:1")
	if err != nil {
		t.Fatal(err)
	}
	if v != (resp.RedisBulkString{Value: "ada"}) {
		t.Errorf("Expected the GET reply, got %#v", v)
	}

	v, err = c.Do("PING")
	if err != nil {
		t.Fatal(err)
	}
	if v != (resp.RedisString{Value: "PONG"}) {
		t.Errorf("Expected PONG, got %#v", v)
	}

	wait(t, done)
}

func TestDo_ClosedConnection(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	serverConn.Close()

	if _, err := c.Do("PING"); err == nil {
		t.Error("Expected transport error on closed connection")
	}
}

func TestSendRaw(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	go func() {
		err := c.SendRaw("SET", "my key", "hello world\nline2")
		if err != nil {
			t.Errorf("SendRaw failed: %v", err)
		}
	}()

	buf := make([]byte, 1024)
	n, err := serverConn.Read(buf)
	if err != nil {
		t.Fatalf("Server read failed: %v", err)
	}

	expected := "*3\r\n$3\r\nSET\r\n$6\r\nmy key\r\n$17\r\nhello world\nline2\r\n"
	if string(buf[:n]) != expected {
		t.Errorf("Expected %q, got %q", expected, string(buf[:n]))
	}
}

func TestReceive_Timeout(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	if _, err := c.Receive(20 * time.Millisecond); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestHandshake(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		steps    []step
		protocol int
		wantErr  bool
	}{
		{
			name:     "RESP2 Without Password",
			opts:     Options{},
			protocol: 2,
		},
		{
			name:     "RESP3 Accepted",
			opts:     Options{RESP3: true},
			steps:    []step{{expect: []string{"HELLO", "3"}, reply: "%1\r\n+proto\r\n:3\r\n"}},
			protocol: 3,
		},
		{
			name:     "RESP3 With Password",
			opts:     Options{RESP3: true, Password: "secret"},
			steps:    []step{{expect: []string{"HELLO", "3", "AUTH", "default", "secret"}, reply: "%1\r\n+proto\r\n:3\r\n"}},
			protocol: 3,
		},
		{
			name: "Fallback To RESP2",
			opts: Options{RESP3: true, Password: "secret"},
			steps: []step{
				{expect: []string{"HELLO", "3", "AUTH", "default", "secret"}, reply: "-ERR unknown command 'HELLO'\r\n"},
				{expect: []string{"AUTH", "secret"}, reply: "+OK\r\n"},
			},
			protocol: 2,
		},
		{
			name:     "NOPROTO Without Password",
			opts:     Options{RESP3: true},
			steps:    []step{{expect: []string{"HELLO", "3"}, reply: "-NOPROTO unsupported protocol version\r\n"}},
			protocol: 2,
		},
		{
			name:     "ACL Auth",
			opts:     Options{User: "app", Password: "pw"},
			steps:    []step{{expect: []string{"AUTH", "app", "pw"}, reply: "+OK\r\n"}},
			protocol: 2,
		},
		{
			name:    "Wrong Password On HELLO",
			opts:    Options{RESP3: true, Password: "bad"},
			steps:   []step{{expect: []string{"HELLO", "3", "AUTH", "default", "bad"}, reply: "-WRONGPASS invalid username-password pair\r\n"}},
			wantErr: true,
		},
		{
			name:    "Wrong Password On AUTH",
			opts:    Options{Password: "bad"},
			steps:   []step{{expect: []string{"AUTH", "bad"}, reply: "-ERR invalid password\r\n"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, serverConn := setupMockConnection()
			defer c.Close()
			defer serverConn.Close()

			done := runServer(serverConn, tt.steps)
			err := c.handshake(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("handshake() error = %v, wantErr %v", err, tt.wantErr)
			}
			wait(t, done)
			if !tt.wantErr && c.Protocol != tt.protocol {
				t.Errorf("Protocol = %d, want %d", c.Protocol, tt.protocol)
			}
		})
	}
}

func TestGetServerInfo(t *testing.T) {
	infoText := "# Server\r\nredis_version:7.0.0\r\nos:Linux\r\n\r\n"

	tests := []struct {
		name  string
		reply string
	}{
		{name: "Bulk String", reply: bulk(infoText)},
		{name: "Verbatim", reply: fmt.Sprintf("=%d\r\ntxt:%s\r\n", len(infoText)+4, infoText)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, serverConn := setupMockConnection()
			defer c.Close()
			defer serverConn.Close()

			done := runServer(serverConn, []step{{expect: []string{"INFO", "server"}, reply: tt.reply}})
			if err := c.getServerInfo(); err != nil {
				t.Fatalf("getServerInfo failed: %v", err)
			}
			wait(t, done)

			if c.Version() != "7.0.0" {
				t.Errorf("Expected redis_version 7.0.0, got %v", c.Version())
			}
			if c.ServerInfo["os"] != "Linux" {
				t.Errorf("Expected os Linux, got %v", c.ServerInfo["os"])
			}
		})
	}
}

func TestGetServerInfo_Refused(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	done := runServer(serverConn, []step{{expect: []string{"INFO", "server"}, reply: "-NOPERM no permissions\r\n"}})
	if err := c.getServerInfo(); err == nil {
		t.Error("Expected error for refused INFO")
	}
	wait(t, done)
}

func TestFetchServerCommands(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	getEntry := array(
		bulk("get"), ":2\r\n",
		array("+readonly\r\n", "+fast\r\n"),
		":1\r\n", ":1\r\n", ":1\r\n",
		"~2\r\n+@read\r\n+@string\r\n",
		"*0\r\n", "*0\r\n", "*0\r\n",
	)
	configGet := array(bulk("config|get"), ":-3\r\n", "*0\r\n", ":0\r\n", ":0\r\n", ":0\r\n", array("+@admin\r\n"), "*0\r\n", "*0\r\n", "*0\r\n")
	configEntry := array(
		bulk("config"), ":-2\r\n", "*0\r\n", ":0\r\n", ":0\r\n", ":0\r\n",
		"*0\r\n", "*0\r\n", "*0\r\n",
		array(configGet),
	)
	reply := array(getEntry, configEntry, ":1\r\n")

	done := runServer(serverConn, []step{{expect: []string{"COMMAND"}, reply: reply}})
	cmds, err := c.FetchServerCommands()
	if err != nil {
		t.Fatal(err)
	}
	wait(t, done)

	if len(cmds) != 2 {
		t.Fatalf("Expected 2 commands (malformed entry skipped), got %d", len(cmds))
	}
	if cmds[0].Name != "GET" || cmds[0].Arity != 2 {
		t.Errorf("Unexpected GET entry %+v", cmds[0])
	}
	if !reflect.DeepEqual(cmds[0].ACLCats, []string{"@read", "@string"}) {
		t.Errorf("Unexpected ACL categories %v", cmds[0].ACLCats)
	}
	if len(cmds[1].Subcommands) != 1 || cmds[1].Subcommands[0].Name != "CONFIG GET" {
		t.Errorf("Unexpected subcommands %+v", cmds[1].Subcommands)
	}
}

func TestFetchServerCommands_Refused(t *testing.T) {
	c, serverConn := setupMockConnection()
	defer c.Close()
	defer serverConn.Close()

	done := runServer(serverConn, []step{{expect: []string{"COMMAND"}, reply: "-ERR unknown command\r\n"}})
	cmds, err := c.FetchServerCommands()
	if err != nil || cmds != nil {
		t.Errorf("Expected nil, nil for refused COMMAND, got %v, %v", cmds, err)
	}
	wait(t, done)
}

func TestConnect_Unreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().(*net.TCPAddr)
	l.Close()

	if _, err := Connect(Options{Host: "127.0.0.1", Port: addr.Port}); err == nil {
		t.Error("Expected dial error")
	}
}
