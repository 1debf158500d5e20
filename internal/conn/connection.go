package conn

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/cosmez/reapi-go/internal/resp"
)

// handshakeTimeout bounds each reply read while setting up a connection.
// Commands sent with Do have no deadline.
const handshakeTimeout = 5 * time.Second

// Options describes how to reach and authenticate with a server.
type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	RESP3    bool // negotiate RESP3 with HELLO 3, falling back to RESP2
}

// Addr returns host:port.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Connection is a single TCP connection to a Redis-protocol server.
// It is not safe for concurrent use.
type Connection struct {
	Host       string
	Port       int
	Protocol   int // 2 or 3, as negotiated
	ServerInfo map[string]string

	reader *bufio.Reader
	conn   net.Conn
}

// Connect dials the server, negotiates the protocol, authenticates when a
// password is configured and reads the server section of INFO.
func Connect(opts Options) (*Connection, error) {
	address := opts.Addr()
	nc, err := net.DialTimeout("tcp", address, handshakeTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	c := newConnection(nc, opts)
	if err := c.handshake(opts); err != nil {
		c.Close()
		return nil, err
	}

	// INFO is blocked in some restricted environments; that is not fatal.
	if err := c.getServerInfo(); err != nil {
		c.ServerInfo = map[string]string{"error": err.Error()}
	}

	return c, nil
}

func newConnection(nc net.Conn, opts Options) *Connection {
	return &Connection{
		Host:     opts.Host,
		Port:     opts.Port,
		Protocol: 2,
		conn:     nc,
		reader:   bufio.NewReader(nc),
	}
}

// handshake switches to RESP3 when asked to and the server supports it, and
// authenticates. Servers that reject HELLO get a plain AUTH and stay on
// RESP2.
func (c *Connection) handshake(opts Options) error {
	if opts.RESP3 {
		args := []string{"HELLO", "3"}
		if opts.Password != "" {
			user := opts.User
			if user == "" {
				user = "default"
			}
			args = append(args, "AUTH", user, opts.Password)
		}

		response, err := c.roundTrip(args...)
		if err != nil {
			return fmt.Errorf("HELLO failed: %w", err)
		}
		errResp, failed := response.(resp.RedisError)
		if !failed {
			c.Protocol = 3
			return nil
		}
		if !helloUnsupported(errResp.Value) {
			return fmt.Errorf("authentication failed: %s", errResp.Value)
		}
	}

	if opts.Password == "" {
		return nil
	}

	args := []string{"AUTH", opts.Password}
	if opts.User != "" {
		args = []string{"AUTH", opts.User, opts.Password}
	}
	response, err := c.roundTrip(args...)
	if err != nil {
		return fmt.Errorf("failed to send AUTH command: %w", err)
	}
	if errResp, ok := response.(resp.RedisError); ok {
		return fmt.Errorf("authentication failed: %s", errResp.Value)
	}
	if strResp, ok := response.(resp.RedisString); !ok || strResp.Value != "OK" {
		return fmt.Errorf("unexpected AUTH response: %v", response)
	}
	return nil
}

// helloUnsupported reports whether a HELLO error means the server only
// speaks RESP2, as opposed to rejecting the credentials.
func helloUnsupported(msg string) bool {
	return strings.HasPrefix(msg, "NOPROTO") ||
		strings.HasPrefix(msg, "ERR unknown command") ||
		strings.HasPrefix(msg, "ERR unknown subcommand")
}

// roundTrip sends a command and reads its reply within handshakeTimeout.
func (c *Connection) roundTrip(args ...string) (resp.RedisValue, error) {
	if err := c.SendRaw(args...); err != nil {
		return nil, err
	}
	return c.Receive(handshakeTimeout)
}

// Do sends one command and waits for its reply with no deadline. A reply
// of type RedisError is returned as a value, not as an error; the error
// return is reserved for transport and protocol faults.
func (c *Connection) Do(args ...string) (resp.RedisValue, error) {
	if err := c.SendRaw(args...); err != nil {
		return nil, fmt.Errorf("send %s: %w", commandName(args), err)
	}
	v, err := c.Receive(0)
	if err != nil {
		return nil, fmt.Errorf("receive %s: %w", commandName(args), err)
	}
	return v, nil
}

func commandName(args []string) string {
	if len(args) == 0 {
		return "command"
	}
	return strings.ToUpper(args[0])
}

// SendRaw writes a command as a RESP array of bulk strings. Arguments are
// length-prefixed, so they may hold spaces, quotes, newlines or binary data.
func (c *Connection) SendRaw(args ...string) error {
	_, err := c.conn.Write(resp.EncodeStrings(args...))
	return err
}

// Receive reads a single reply from the server, optionally with a timeout.
// Push messages sent ahead of the reply are dropped.
func (c *Connection) Receive(timeout time.Duration) (resp.RedisValue, error) {
	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
		defer c.conn.SetReadDeadline(time.Time{})
	}

	return resp.ParseReply(c.reader)
}

// Close terminates the TCP connection.
func (c *Connection) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
