// Package easyremotetest provides a scripted fake console for tests.
package easyremotetest

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"
)

// Console listens on loopback UDP and answers every ready message with a
// fixed script of datagrams. Everything it receives is recorded.
type Console struct {
	conn     *net.UDPConn
	script   []string
	received chan string
	done     chan struct{}
}

// NewConsole starts a console that replies to ready with script.
// An empty script makes a console that never answers.
// The console is closed when the test ends.
func NewConsole(t testing.TB, script ...string) *Console {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("easyremotetest: listen: %v", err)
	}

	c := &Console{
		conn:     conn,
		script:   script,
		received: make(chan string, 256),
		done:     make(chan struct{}),
	}
	go c.serve()
	t.Cleanup(c.Close)
	return c
}

func (c *Console) serve() {
	defer close(c.done)
	buf := make([]byte, 4096)
	for {
		n, from, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		msg := string(buf[:n])
		select {
		case c.received <- msg:
		default:
		}

		if strings.HasPrefix(msg, "action=ready") {
			for _, d := range c.script {
				if _, err := c.conn.WriteToUDP([]byte(d), from); err != nil {
					return
				}
			}
		}
	}
}

// Host returns the loopback address the console listens on.
func (c *Console) Host() string { return "127.0.0.1" }

// Port returns the UDP port the console listens on.
func (c *Console) Port() int { return c.conn.LocalAddr().(*net.UDPAddr).Port }

// Next returns the next datagram the console received, waiting at most
// timeout. It fails the test when nothing arrives.
func (c *Console) Next(t testing.TB, timeout time.Duration) string {
	t.Helper()
	select {
	case msg := <-c.received:
		return msg
	case <-time.After(timeout):
		t.Fatalf("easyremotetest: no datagram within %s", timeout)
		return ""
	}
}

// Pending returns the number of received datagrams not yet read by Next.
func (c *Console) Pending() int { return len(c.received) }

// Close stops the console.
func (c *Console) Close() {
	c.conn.Close()
	<-c.done
}

// SetLayer builds a set_layer datagram.
func SetLayer(id, page int, name, typ string) string {
	return fmt.Sprintf("action=set_layer&id=%d&page=%d&name=%s&type=%s&x=0&y=0&width=0&height=0",
		id, page, url.QueryEscape(name), typ)
}

// Done builds the done datagram.
func Done() string { return "action=done" }
