// Package easyremote provides a client for driving the remote-control
// surface of DMX lighting consoles over the EasyRemote UDP protocol.
//
// # Basic Usage
//
//	ctx := context.Background()
//	session, err := easyremote.NewSession(ctx, "192.168.1.50")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	dimmer, err := session.Slider("Master")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := dimmer.SetValue(ctx, 255); err != nil {
//	    log.Fatal(err)
//	}
//
// # Discovery
//
// NewSession announces the client to the console and blocks until the
// console has described every control or the read timeout expires. A
// console that does not answer in time yields a session without controls
// rather than an error; check Complete or Len after construction.
//
// # Configuration
//
// The session can be configured using functional options:
//
//	session, err := easyremote.NewSession(ctx, "192.168.1.50",
//	    easyremote.WithPort(4003),
//	    easyremote.WithReadTimeout(2*time.Second),
//	    easyremote.WithLogger(slog.Default()),
//	)
//
// # Protocol
//
// Messages are URL-encoded key/value strings carried in single UDP
// datagrams. The console listens on UDP port 4003 by default. Updates are
// fire-and-forget: the console never acknowledges them.
package easyremote
