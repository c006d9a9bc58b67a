// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/gorilla/websocket"
	"github.com/launchkit/vrfd/rpc/jsonrpc/types"
	"github.com/launchkit/vrfd/vrfqueue"
)

const (
	// websocketSendBufferSize is the number of elements the send channel
	// can queue before blocking.  Note that this only applies to requests
	// handled directly in the websocket client input handler since
	// notifications have their own queuing mechanism independent of the send
	// channel buffer.
	websocketSendBufferSize = 50

	// websocketReadLimitUnauthenticated is the maximum number of bytes allowed
	// for an unauthenticated JSON-RPC message read from a websocket client.
	websocketReadLimitUnauthenticated = 1 << 12 // 4 KiB

	// websocketReadLimitAuthenticated is the maximum number of bytes allowed
	// for an authenticated JSON-RPC message read from a websocket client.
	websocketReadLimitAuthenticated = 1 << 20 // 1 MiB

	// websocketPongTimeout is the maximum amount of time attempts to respond to
	// websocket ping messages with a pong will wait before giving up.
	websocketPongTimeout = time.Second * 5
)

type semaphore chan struct{}

func makeSemaphore(n int) semaphore {
	return make(chan struct{}, n)
}

func (s semaphore) acquire() { s <- struct{}{} }
func (s semaphore) release() { <-s }

// timeZeroVal is simply the zero value for a time.Time and is used to avoid
// creating multiple instances.
var timeZeroVal time.Time

// wsCommandHandler describes a callback function used to handle a specific
// command.
type wsCommandHandler func(context.Context, *wsClient, interface{}) (interface{}, error)

// wsHandlers maps RPC command strings to appropriate websocket handler
// functions.
var wsHandlers = map[types.Method]wsCommandHandler{
	"notifyrandomnumbers":     handleNotifyRandomNumbers,
	"stopnotifyrandomnumbers": handleStopNotifyRandomNumbers,
}

// WebsocketHandler handles a new websocket client by creating a new wsClient,
// starting it, and blocking until the connection closes.  Since it blocks, it
// must be run in a separate goroutine.  It should be invoked from the websocket
// server handler which runs each new connection in a new goroutine thereby
// satisfying the requirement.
func (s *Server) WebsocketHandler(ctx context.Context, conn *websocket.Conn, remoteAddr string, authenticated bool, isAdmin bool) {
	// Clear the read deadline that was set before the websocket hijacked
	// the connection.
	conn.SetReadDeadline(timeZeroVal)

	// Limit max number of websocket clients.
	log.Infof("New websocket client %s", remoteAddr)
	if s.ntfnMgr.NumClients()+1 > s.cfg.RPCMaxWebsockets {
		log.Infof("Max websocket clients exceeded [%d] - "+
			"disconnecting client %s", s.cfg.RPCMaxWebsockets,
			remoteAddr)
		conn.Close()
		return
	}

	// Create a new websocket client to handle the new websocket connection
	// and wait for it to shutdown.  Once it has shutdown (and hence
	// disconnected), remove it and any notifications it registered for.
	client := newWebsocketClient(s, conn, remoteAddr, authenticated, isAdmin)
	s.ntfnMgr.AddClient(client)
	client.Run(ctx)
	s.ntfnMgr.RemoveClient(client)
	log.Infof("Disconnected websocket client %s", remoteAddr)
}

// wsNotificationManager is a connection and notification manager used for
// websockets.  It allows websocket clients to register for random number
// notifications.  When the queue serves a number or appends an oracle batch,
// the notification manager is provided with the details and forwards them to
// every websocket client registered for them.  It is also used to keep track of
// all connected websocket clients.
type wsNotificationManager struct {
	// server is the RPC server the notification manager is associated with.
	server *Server

	// queueNotification queues a notification for handling.
	queueNotification chan interface{}

	// notificationMsgs feeds notificationHandler with notifications
	// and client (un)registeration requests from a queue as well as
	// registeration and unregisteration requests from clients.
	notificationMsgs chan interface{}

	// Access channel for current number of connected clients.
	numClients chan int

	// The following fields are used for lifecycle management of the
	// notification manager.
	wg   sync.WaitGroup
	quit chan struct{}
}

// queueHandler maintains a queue of notifications and notification handler
// control messages. The handler stops when the input channel is closed or a
// context cancellation signal is received.
func (m *wsNotificationManager) queueHandler(ctx context.Context) {
	var q []interface{}
	var dequeue chan<- interface{}
	skipQueue := m.notificationMsgs
	var next interface{}

	for {
		select {
		case <-ctx.Done():
			close(m.notificationMsgs)
			m.wg.Done()
			return

		case n := <-m.queueNotification:
			// Either send to out immediately if skipQueue is
			// non-nil (queue is empty) and reader is ready,
			// or append to the queue and send later.
			select {
			case skipQueue <- n:
			default:
				q = append(q, n)
				dequeue = m.notificationMsgs
				skipQueue = nil
				next = q[0]
			}

		case dequeue <- next:
			copy(q, q[1:])
			q[len(q)-1] = nil // avoid leak
			q = q[:len(q)-1]
			if len(q) == 0 {
				dequeue = nil
				skipQueue = m.notificationMsgs
			} else {
				next = q[0]
			}
		}
	}
}

// NotifyRandomNumber passes a served random number to the notification manager
// for forwarding to registered clients.
func (m *wsNotificationManager) NotifyRandomNumber(rn *vrfqueue.RandomNumber) {
	select {
	case m.queueNotification <- (*notificationRandomNumber)(rn):
	case <-m.quit:
	}
}

// NotifyBatchAppended passes an appended oracle batch to the notification
// manager for forwarding to registered clients.
func (m *wsNotificationManager) NotifyBatchAppended(ba *vrfqueue.BatchAppended) {
	select {
	case m.queueNotification <- (*notificationBatchAppended)(ba):
	case <-m.quit:
	}
}

// Notification types
type notificationRandomNumber vrfqueue.RandomNumber
type notificationBatchAppended vrfqueue.BatchAppended

// Notification control requests
type notificationRegisterClient wsClient
type notificationUnregisterClient wsClient
type notificationRegisterRandomNumbers wsClient
type notificationUnregisterRandomNumbers wsClient

// notificationHandler reads notifications and control messages from the queue
// handler and processes one at a time.
func (m *wsNotificationManager) notificationHandler(ctx context.Context) {
	// clients is a map of all currently connected websocket clients.
	clients := make(map[chan struct{}]*wsClient)

	// subscribers holds the clients registered for random number updates.
	// The quit channel is used as the unique id for a client since it is
	// quite a bit more efficient than using the entire struct.
	subscribers := make(map[chan struct{}]*wsClient)

out:
	for {
		select {
		case <-ctx.Done():
			// RPC server shutdown.
			break out

		case n, ok := <-m.notificationMsgs:
			if !ok {
				// queueHandler quit.
				break out
			}
			switch n := n.(type) {
			case *notificationRandomNumber:
				m.notifyRandomNumber(subscribers,
					(*vrfqueue.RandomNumber)(n))

			case *notificationBatchAppended:
				m.notifyBatchAppended(subscribers,
					(*vrfqueue.BatchAppended)(n))

			case *notificationRegisterRandomNumbers:
				wsc := (*wsClient)(n)
				subscribers[wsc.quit] = wsc

			case *notificationUnregisterRandomNumbers:
				wsc := (*wsClient)(n)
				delete(subscribers, wsc.quit)

			case *notificationRegisterClient:
				wsc := (*wsClient)(n)
				clients[wsc.quit] = wsc

			case *notificationUnregisterClient:
				wsc := (*wsClient)(n)
				// Remove any requests made by the client as well as
				// the client itself.
				delete(subscribers, wsc.quit)
				delete(clients, wsc.quit)

			default:
				log.Warnf("Unhandled notification type: %T", n)
			}

		case m.numClients <- len(clients):
		}
	}

	for _, c := range clients {
		c.Disconnect()
	}
	m.wg.Done()
}

// broadcast queues the marshalled notification to every passed client.
func broadcast(clients map[chan struct{}]*wsClient, marshalled []byte) {
	for quitChan, wsc := range clients {
		if err := wsc.QueueNotification(marshalled); errors.Is(err, ErrClientQuit) {
			// Remove the client from the list to notify if it quit.
			delete(clients, quitChan)
		}
	}
}

// notifyRandomNumber notifies websocket clients that have registered for
// random number updates when a number is served.
func (*wsNotificationManager) notifyRandomNumber(clients map[chan struct{}]*wsClient, rn *vrfqueue.RandomNumber) {
	// Skip notification creation if no clients have requested random
	// number notifications.
	if len(clients) == 0 {
		return
	}

	ntfn := types.NewRandomNumberNtfn(rn.Value, rn.Bound, rn.Source.String())
	marshalled, err := dcrjson.MarshalCmd("1.0", nil, ntfn)
	if err != nil {
		log.Errorf("Failed to marshal random number notification: %v", err)
		return
	}
	broadcast(clients, marshalled)
}

// notifyBatchAppended notifies websocket clients that have registered for
// random number updates when an oracle batch is appended.
func (*wsNotificationManager) notifyBatchAppended(clients map[chan struct{}]*wsClient, ba *vrfqueue.BatchAppended) {
	if len(clients) == 0 {
		return
	}

	ntfn := types.NewBatchAppendedNtfn(ba.RequestID.String(), ba.Index)
	marshalled, err := dcrjson.MarshalCmd("1.0", nil, ntfn)
	if err != nil {
		log.Errorf("Failed to marshal batch appended notification: %v", err)
		return
	}
	broadcast(clients, marshalled)
}

// NumClients returns the number of clients actively being served.
func (m *wsNotificationManager) NumClients() int {
	var n int
	select {
	case n = <-m.numClients:
	case <-m.quit: // Use default n (0) if server has shut down.
	}
	return n
}

// RegisterRandomNumbers requests random number notifications to the passed
// websocket client.
func (m *wsNotificationManager) RegisterRandomNumbers(wsc *wsClient) {
	select {
	case m.queueNotification <- (*notificationRegisterRandomNumbers)(wsc):
	case <-m.quit:
	}
}

// UnregisterRandomNumbers removes random number notifications for the passed
// websocket client.
func (m *wsNotificationManager) UnregisterRandomNumbers(wsc *wsClient) {
	select {
	case m.queueNotification <- (*notificationUnregisterRandomNumbers)(wsc):
	case <-m.quit:
	}
}

// AddClient adds the passed websocket client to the notification manager.
func (m *wsNotificationManager) AddClient(wsc *wsClient) {
	select {
	case m.queueNotification <- (*notificationRegisterClient)(wsc):
	case <-m.quit:
	}
}

// RemoveClient removes the passed websocket client and all notifications
// registered for it.
func (m *wsNotificationManager) RemoveClient(wsc *wsClient) {
	select {
	case m.queueNotification <- (*notificationUnregisterClient)(wsc):
	case <-m.quit:
	}
}

// Run starts the goroutines required for the manager to queue and process
// websocket client notifications.  It blocks until the provided context is
// cancelled.
func (m *wsNotificationManager) Run(ctx context.Context) {
	m.wg.Add(3)
	go m.queueHandler(ctx)
	go m.notificationHandler(ctx)
	go func(ctx context.Context) {
		<-ctx.Done()
		close(m.quit)
		m.wg.Done()
	}(ctx)
	m.wg.Wait()
}

// newWsNotificationManager returns a new notification manager ready for use.
// See wsNotificationManager for more details.
func newWsNotificationManager(server *Server) *wsNotificationManager {
	return &wsNotificationManager{
		server:            server,
		queueNotification: make(chan interface{}),
		notificationMsgs:  make(chan interface{}),
		numClients:        make(chan int),
		quit:              make(chan struct{}),
	}
}

// wsResponse houses a message to send to a connected websocket client as
// well as a channel to reply on when the message is sent.
type wsResponse struct {
	msg      []byte
	doneChan chan bool
}

// wsClient provides an abstraction for handling a websocket client.  Inbound
// messages are read via the inHandler goroutine and generally dispatched to
// their own handler.  Responses to client requests use SendMessage which
// employs a buffered channel thereby limiting the number of outstanding
// requests that can be made.  Notifications are sent via QueueNotification
// which implements a queue via notificationQueueHandler to ensure the random
// number queue can't be blocked by a slow client.  Ultimately, all messages are
// sent via the outHandler.
type wsClient struct {
	disconnected atomic.Bool // Websocket client disconnected?

	// server is the RPC server that is servicing the client.
	rpcServer *Server

	// conn is the underlying websocket connection.
	conn *websocket.Conn

	// addr is the remote address of the client.
	addr string

	// authenticated specifies whether a client has been authenticated
	// and therefore is allowed to communicated over the websocket.
	authenticated bool

	// isAdmin specifies whether a client may change the state of the server;
	// false means its access is only to the limited set of RPC calls.
	isAdmin bool

	// Networking infrastructure.
	serviceRequestSem semaphore
	ntfnChan          chan []byte
	sendChan          chan wsResponse
	quit              chan struct{}
	wg                sync.WaitGroup
}

// shouldLogReadError returns whether or not the passed error, which is expected
// to have come from reading from the websocket client in the inHandler, should
// be logged.
func (c *wsClient) shouldLogReadError(err error) bool {
	// No logging when the client is being forcibly disconnected from the server
	// side.
	if c.disconnected.Load() {
		return false
	}

	// No logging when the remote client has disconnected.
	if errors.Is(err, io.EOF) || websocket.IsCloseError(err,
		websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {

		return false
	}

	return true
}

// errDisconnectClient is returned by handleRequest when the client must be
// disconnected instead of receiving a reply.
var errDisconnectClient = errors.New("disconnect client")

// handleRequest checks the authentication state of the client for the passed
// request and either returns the parsed command to service, a reply to send
// right away, or errDisconnectClient.  Exactly one of the command and the reply
// is non-nil when the error is nil, and both are nil for notifications.
func (c *wsClient) handleRequest(req *dcrjson.Request) (*parsedRPCCmd, []byte, error) {
	if req.Method == "" {
		jsonErr := &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCInvalidRequest.Code,
			Message: "Invalid request: malformed",
		}
		reply, err := createMarshalledReply(req.Jsonrpc, req.ID, nil, jsonErr)
		return nil, reply, err
	}

	// Valid requests with no ID (notifications) must not have a response
	// per the JSON-RPC spec.
	if req.ID == nil {
		if !c.authenticated {
			return nil, nil, errDisconnectClient
		}
		return nil, nil, nil
	}

	cmd := parseCmd(req)
	if cmd.err != nil {
		// Only process requests from authenticated clients
		if !c.authenticated {
			return nil, nil, errDisconnectClient
		}
		reply, err := createMarshalledReply(cmd.jsonrpc, cmd.id, nil, cmd.err)
		return nil, reply, err
	}

	log.Debugf("Received command <%s> from %s", cmd.method, c.addr)

	// Check auth.  The client is immediately disconnected if the first
	// request of an unauthenticated websocket client is not the authenticate
	// request, an authenticate request is received when the client is
	// already authenticated, or incorrect authentication credentials are
	// provided in the request.
	switch authCmd, ok := cmd.params.(*types.AuthenticateCmd); {
	case c.authenticated && ok:
		log.Warnf("Websocket client %s is already authenticated", c.addr)
		return nil, nil, errDisconnectClient
	case !c.authenticated && !ok:
		log.Warnf("Unauthenticated websocket message received")
		return nil, nil, errDisconnectClient
	case !c.authenticated:
		// Check credentials.
		c.authenticated, c.isAdmin = c.rpcServer.checkAuthUserPass(
			authCmd.Username, authCmd.Passphrase, c.addr)
		if !c.authenticated {
			return nil, nil, errDisconnectClient
		}

		// Increase the read limits for authenticated connections.
		c.conn.SetReadLimit(websocketReadLimitAuthenticated)
		reply, err := createMarshalledReply(cmd.jsonrpc, cmd.id, nil, nil)
		return nil, reply, err
	}

	// Check if the client is using limited RPC credentials and error when
	// not authorized to call the supplied RPC.
	if !c.isAdmin {
		if _, ok := rpcLimited[req.Method]; !ok {
			jsonErr := &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCInvalidParams.Code,
				Message: "limited user not authorized for this method",
			}
			reply, err := createMarshalledReply(req.Jsonrpc, req.ID, nil, jsonErr)
			return nil, reply, err
		}
	}

	return cmd, nil, nil
}

// inHandler handles all incoming messages for the websocket connection.  It
// must be run as a goroutine.
func (c *wsClient) inHandler(ctx context.Context) {
out:
	for !c.disconnected.Load() {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			// Log the error if it's not due to disconnecting.
			if c.shouldLogReadError(err) {
				log.Errorf("Websocket receive error from %s: %v", c.addr, err)
			}
			break out
		}

		if bytes.HasPrefix(msg, batchedRequestPrefix) {
			// Batched requests are only processed for clients that
			// already authenticated.
			if !c.authenticated {
				break out
			}
			c.serviceRequestSem.acquire()
			payload := c.serviceBatch(ctx, msg)
			c.serviceRequestSem.release()
			if payload != nil {
				c.SendMessage(payload, nil)
			}
			continue
		}

		var req dcrjson.Request
		if err := json.Unmarshal(msg, &req); err != nil {
			// Only process requests from authenticated clients
			if !c.authenticated {
				break out
			}

			jsonErr := &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCParse.Code,
				Message: "Failed to parse request: " + err.Error(),
			}
			reply, err := createMarshalledReply("1.0", nil, nil, jsonErr)
			if err != nil {
				log.Errorf("Failed to marshal reply: %v", err)
				continue
			}
			c.SendMessage(reply, nil)
			continue
		}

		cmd, reply, err := c.handleRequest(&req)
		switch {
		case errors.Is(err, errDisconnectClient):
			break out
		case err != nil:
			log.Errorf("Failed to marshal reply: %v", err)
			continue
		case reply != nil:
			c.SendMessage(reply, nil)
			continue
		case cmd == nil:
			continue
		}

		// Asynchronously handle the request.  A semaphore is used to limit
		// the number of concurrent requests currently being serviced.  If
		// the semaphore can not be acquired, simply wait until a request
		// finished before reading the next RPC request from the websocket
		// client.
		c.serviceRequestSem.acquire()
		go func() {
			c.serviceRequest(ctx, cmd)
			c.serviceRequestSem.release()
		}()
	}

	c.Disconnect()
	c.wg.Done()
	log.Tracef("Websocket client input handler done for %s", c.addr)
}

// serviceBatch services every entry of a batched request in order and returns
// the marshalled batch of replies.
func (c *wsClient) serviceBatch(ctx context.Context, msg []byte) []byte {
	var batchedRequests []json.RawMessage
	if err := json.Unmarshal(msg, &batchedRequests); err != nil {
		jsonErr := &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCParse.Code,
			Message: fmt.Sprintf("Failed to parse request: %v", err),
		}
		reply, err := dcrjson.MarshalResponse("2.0", nil, nil, jsonErr)
		if err != nil {
			log.Errorf("Failed to create reply: %v", err)
		}
		return reply
	}
	if len(batchedRequests) == 0 {
		jsonErr := &dcrjson.RPCError{
			Code:    dcrjson.ErrRPCInvalidRequest.Code,
			Message: "Invalid request: empty batch",
		}
		reply, err := dcrjson.MarshalResponse("2.0", nil, nil, jsonErr)
		if err != nil {
			log.Errorf("Failed to marshal reply: %v", err)
		}
		return reply
	}

	results := make([][]byte, 0, len(batchedRequests))
	for _, entry := range batchedRequests {
		var req dcrjson.Request
		if err := json.Unmarshal(entry, &req); err != nil {
			jsonErr := &dcrjson.RPCError{
				Code:    dcrjson.ErrRPCInvalidRequest.Code,
				Message: fmt.Sprintf("Invalid request: %v", err),
			}
			reply, err := dcrjson.MarshalResponse("2.0", nil, nil, jsonErr)
			if err != nil {
				log.Errorf("Failed to create reply: %v", err)
				continue
			}
			results = append(results, reply)
			continue
		}

		cmd, reply, err := c.handleRequest(&req)
		if err != nil {
			// The client is authenticated at this point, so the only
			// way to be asked to disconnect is a second authenticate.
			if errors.Is(err, errDisconnectClient) {
				c.Disconnect()
				return nil
			}
			log.Errorf("Failed to marshal reply: %v", err)
			continue
		}
		if cmd != nil {
			reply = c.commandReply(ctx, cmd)
		}
		if reply != nil {
			results = append(results, reply)
		}
	}
	if len(results) == 0 {
		return nil
	}
	return joinBatch(results)
}

// commandReply runs the handler for the passed command and returns the
// marshalled reply.
func (c *wsClient) commandReply(ctx context.Context, r *parsedRPCCmd) []byte {
	var (
		result interface{}
		err    error
	)

	wsHandler, ok := wsHandlers[r.method]
	if ok {
		result, err = wsHandler(ctx, c, r.params)
	} else {
		result, err = c.rpcServer.standardCmdResult(ctx, r)
	}
	reply, err := createMarshalledReply(r.jsonrpc, r.id, result, err)
	if err != nil {
		log.Errorf("Failed to marshal reply for <%s> "+
			"command: %v", r.method, err)
		return nil
	}
	return reply
}

// serviceRequest services a parsed RPC request by looking up and executing the
// appropriate RPC handler.  The response is marshalled and sent to the
// websocket client.
func (c *wsClient) serviceRequest(ctx context.Context, r *parsedRPCCmd) {
	if reply := c.commandReply(ctx, r); reply != nil {
		c.SendMessage(reply, nil)
	}
}

// notificationQueueHandler handles the queuing of outgoing notifications for
// the websocket client.  This runs as a muxer for various sources of input to
// ensure that queuing up notifications to be sent will not block.  Otherwise,
// slow clients could bog down the other systems (such as the random number
// queue) from proceeding in a timely manner.
func (c *wsClient) notificationQueueHandler() {
	ntfnSentChan := make(chan bool, 1) // nonblocking sync

	// pendingNtfns is used as a queue for notifications that are ready to
	// be sent once there are no outstanding notifications currently being
	// sent.  The waiting flag is used over simply checking for items in the
	// pending list to ensure cleanup knows what has and hasn't been sent
	// to the outHandler.
	var pendingNtfns [][]byte
	waiting := false
out:
	for {
		select {
		// This channel is notified when a message is being queued to
		// be sent across the network socket.  It will either send the
		// message immediately if a send is not already in progress, or
		// queue the message to be sent once the other pending messages
		// are sent.
		case msg := <-c.ntfnChan:
			if !waiting {
				c.SendMessage(msg, ntfnSentChan)
			} else {
				pendingNtfns = append(pendingNtfns, msg)
			}
			waiting = true

		// This channel is notified when a notification has been sent
		// across the network socket.
		case <-ntfnSentChan:
			// No longer waiting if there are no more messages in
			// the pending messages queue.
			if len(pendingNtfns) == 0 {
				waiting = false
				continue
			}

			// Notify the outHandler about the next item to
			// asynchronously send.
			msg := pendingNtfns[0]
			pendingNtfns[0] = nil // Prevent memory leak.
			pendingNtfns = pendingNtfns[1:]
			c.SendMessage(msg, ntfnSentChan)

		case <-c.quit:
			break out
		}
	}

	c.wg.Done()
	log.Tracef("Websocket client notification queue handler done "+
		"for %s", c.addr)
}

// outHandler handles all outgoing messages for the websocket connection.  It
// must be run as a goroutine.  It uses a buffered channel to serialize output
// messages while allowing the sender to continue running asynchronously.  It
// must be run as a goroutine.
func (c *wsClient) outHandler() {
out:
	for {
		// Send any messages ready for send until the quit channel is
		// closed.
		select {
		case r := <-c.sendChan:
			err := c.conn.WriteMessage(websocket.TextMessage, r.msg)
			if err != nil {
				c.Disconnect()
				break out
			}
			if r.doneChan != nil {
				r.doneChan <- true
			}

		case <-c.quit:
			break out
		}
	}

	c.wg.Done()
	log.Tracef("Websocket client output handler done for %s", c.addr)
}

// SendMessage sends the passed json to the websocket client.  It is backed
// by a buffered channel, so it will not block until the send channel is full.
// Note however that QueueNotification must be used for sending async
// notifications instead of this function.  This approach allows a limit to
// the number of outstanding requests a client can make without preventing or
// blocking on async notifications.
func (c *wsClient) SendMessage(marshalledJSON []byte, doneChan chan bool) {
	// Don't send the message if disconnected.
	if c.Disconnected() {
		if doneChan != nil {
			doneChan <- false
		}
		return
	}

	select {
	case c.sendChan <- wsResponse{msg: marshalledJSON, doneChan: doneChan}:
	case <-c.quit:
		if doneChan != nil {
			doneChan <- false
		}
	}
}

// ErrClientQuit describes the error where a client send is not processed due
// to the client having already been disconnected or dropped.
var ErrClientQuit = errors.New("client quit")

// QueueNotification queues the passed notification to be sent to the websocket
// client.  This function, as the name implies, is only intended for
// notifications since it has additional logic to prevent other subsystems,
// such as the random number queue, from blocking even when the send channel
// is full.
//
// If the client is in the process of shutting down, this function returns
// ErrClientQuit.  This is intended to be checked by long-running notification
// handlers to stop processing if there is no more work needed to be done.
func (c *wsClient) QueueNotification(marshalledJSON []byte) error {
	// Don't queue the message if disconnected.
	if c.Disconnected() {
		return ErrClientQuit
	}

	select {
	case c.ntfnChan <- marshalledJSON:
	case <-c.quit:
		return ErrClientQuit
	}

	return nil
}

// Disconnected returns whether or not the websocket client is disconnected.
func (c *wsClient) Disconnected() bool {
	return c.disconnected.Load()
}

// Disconnect disconnects the websocket client.
func (c *wsClient) Disconnect() {
	// Nothing to do if already disconnected.
	if !c.disconnected.CompareAndSwap(false, true) {
		return
	}

	log.Tracef("Disconnecting websocket client %s", c.addr)
	close(c.quit)
	c.conn.Close()
}

// Run starts the websocket client and all other goroutines necessary for it to
// function properly.  It blocks until the provided context is cancelled.
func (c *wsClient) Run(ctx context.Context) {
	log.Tracef("Starting websocket client %s", c.addr)

	// Start processing input and output.
	c.wg.Add(3)
	go c.inHandler(ctx)
	go c.notificationQueueHandler()
	go c.outHandler()

	// Forcibly disconnect the websocket client when the context is
	// cancelled which also closes the quit channel and thus ensures all of
	// the above goroutines are shutdown.
	c.wg.Add(1)
	go func(ctx context.Context) {
		select {
		case <-ctx.Done():
			c.Disconnect()
		case <-c.quit:
		}
		c.wg.Done()
	}(ctx)

	c.wg.Wait()
}

// newWebsocketClient returns a new websocket client given the notification
// manager, websocket connection, remote address, and whether or not the client
// has already been authenticated (via HTTP Basic access authentication).  The
// returned client is ready to start.  Once started, the client will process
// incoming and outgoing messages in separate goroutines complete with queuing
// and asynchrous handling for long-running operations.
func newWebsocketClient(server *Server, conn *websocket.Conn,
	remoteAddr string, authenticated bool, isAdmin bool) *wsClient {

	maxReqs := server.cfg.RPCMaxConcurrentReqs
	if maxReqs < 1 {
		maxReqs = 1
	}
	return &wsClient{
		conn:              conn,
		addr:              remoteAddr,
		authenticated:     authenticated,
		isAdmin:           isAdmin,
		rpcServer:         server,
		serviceRequestSem: makeSemaphore(maxReqs),
		ntfnChan:          make(chan []byte, 1), // nonblocking sync
		sendChan:          make(chan wsResponse, websocketSendBufferSize),
		quit:              make(chan struct{}),
	}
}

// handleNotifyRandomNumbers implements the notifyrandomnumbers command
// extension for websocket connections.
func handleNotifyRandomNumbers(_ context.Context, wsc *wsClient, _ interface{}) (interface{}, error) {
	wsc.rpcServer.ntfnMgr.RegisterRandomNumbers(wsc)
	return nil, nil
}

// handleStopNotifyRandomNumbers implements the stopnotifyrandomnumbers command
// extension for websocket connections.
func handleStopNotifyRandomNumbers(_ context.Context, wsc *wsClient, _ interface{}) (interface{}, error) {
	wsc.rpcServer.ntfnMgr.UnregisterRandomNumbers(wsc)
	return nil, nil
}
