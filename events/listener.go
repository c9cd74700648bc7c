// Copyright (c) 2026 BVK Chaitanya

// Package events listens on the escrow websocket for newly created jobs and
// dispatches them to a handler.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/bvk/hashes/ctxutil"
	"github.com/bvk/hashes/hashes"
	"github.com/gorilla/websocket"
)

var errClosedNormally = errors.New("websocket closed normally")

type Options struct {
	// ReconnectDelay is the fixed wait before reconnecting after an abnormal
	// close.
	ReconnectDelay time.Duration

	// Output receives the connection status and the failure messages from the
	// server.
	Output io.Writer
}

func (v *Options) setDefaults() {
	if v.ReconnectDelay == 0 {
		v.ReconnectDelay = 5 * time.Second
	}
	if v.Output == nil {
		v.Output = io.Discard
	}
}

type Listener struct {
	opts Options

	addr    url.URL
	handler Handler
}

func NewListener(addr *url.URL, handler Handler, opts *Options) *Listener {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	return &Listener{
		opts:    *opts,
		addr:    *addr,
		handler: handler,
	}
}

// Run receives messages till the server closes the connection normally or the
// context is canceled. Connections closed with an error are reopened after a
// fixed delay.
func (l *Listener) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errClosedNormally) {
			fmt.Fprintln(l.opts.Output, "Connection closed by the server.")
			return nil
		}
		slog.Warn("websocket connection is closed (will retry)", "err", err)
		fmt.Fprintln(l.opts.Output, "\nConnection closed. Reconnecting...")
		if err := ctxutil.Sleep(ctx, l.opts.ReconnectDelay); err != nil {
			return nil
		}
	}
	return nil
}

func (l *Listener) listen(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 30 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, l.addr.String(), nil)
	if err != nil {
		slog.Error("could not dial to websocket feed", "err", err)
		return err
	}
	// Server limits the number of open connections per api key.
	defer conn.Close()

	fmt.Fprintln(l.opts.Output, "Connected to hashes.com websocket API...")
	fmt.Fprintln(l.opts.Output, "Use Ctrl + C to disconnect from websocket.")
	fmt.Fprintln(l.opts.Output)

	for ctx.Err() == nil {
		msg, err := l.readMessage(ctx, conn)
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClosedNormally
			}
			return err
		}
		if err := l.handleMessage(ctx, msg); err != nil {
			slog.Error("could not handle websocket message", "err", err)
			fmt.Fprintf(l.opts.Output, "could not handle new jobs: %v\n", err)
			continue
		}
	}
	l.closeNormally(conn)
	return context.Cause(ctx)
}

func (l *Listener) readMessage(ctx context.Context, conn *websocket.Conn) ([]byte, error) {
	stopc := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		close(stopc)
	})

	_, msg, err := conn.ReadMessage()
	if !stop() {
		// The AfterFunc was started. Wait for it to complete, and reset the Conn's
		// deadline.
		<-stopc
		conn.SetReadDeadline(time.Time{})
		return nil, context.Cause(ctx)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (l *Listener) handleMessage(ctx context.Context, data []byte) error {
	msg := new(hashes.WebsocketMessage)
	if err := json.Unmarshal(data, msg); err != nil {
		slog.Error("could not unmarshal websocket message", "msg", string(data), "err", err)
		return err
	}
	if !msg.Success {
		fmt.Fprintln(l.opts.Output, msg.Message)
		return nil
	}
	return l.handler.Handle(ctx, msg)
}

func (l *Listener) closeNormally(conn *websocket.Conn) {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(time.Second)); err != nil {
		slog.Debug("could not send websocket close message", "err", err)
	}
}
