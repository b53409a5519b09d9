package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lxing/wheel/internal/wheel"
)

type wheelHub struct {
	source     wheel.Source
	newSpinner func() (wheel.Spinner, error)

	mu        sync.RWMutex
	rooms     map[string]*wheelRoom
	lobbySubs map[chan struct{}]struct{}
}

type wheelRoom struct {
	id            string
	ownerDeviceID string

	mu      sync.Mutex
	round   *wheel.Round
	clients map[*websocket.Conn]struct{}
}

type wheelRoomSummary struct {
	RoomID      string `json:"room_id"`
	RoundID     string `json:"round_id"`
	State       string `json:"state"`
	Members     int    `json:"members"`
	PartyCount  int    `json:"party_count"`
	RingSize    int    `json:"ring_size"`
	Pick        string `json:"pick,omitempty"`
	Connections int    `json:"connections"`
}

type listRoomsResponse struct {
	Rooms []wheelRoomSummary `json:"rooms"`
}

func newWheelHub(source wheel.Source, newSpinner func() (wheel.Spinner, error)) *wheelHub {
	if newSpinner == nil {
		newSpinner = freshSpinner
	}
	return &wheelHub{
		source:     source,
		newSpinner: newSpinner,
		rooms:      make(map[string]*wheelRoom),
		lobbySubs:  make(map[chan struct{}]struct{}),
	}
}

func (h *wheelHub) listRoomSummaries() []wheelRoomSummary {
	h.mu.RLock()
	rooms := make([]wheelRoomSummary, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room.summary())
	}
	h.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].RoomID < rooms[j].RoomID
	})
	return rooms
}

func (h *wheelHub) handleListRooms(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listRoomsResponse{Rooms: h.listRoomSummaries()})
}

func (h *wheelHub) handleLobbyEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := make(chan struct{}, 1)
	h.mu.Lock()
	h.lobbySubs[sub] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.lobbySubs, sub)
		h.mu.Unlock()
	}()

	writeRooms := func() bool {
		payload, err := json.Marshal(listRoomsResponse{Rooms: h.listRoomSummaries()})
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeRooms() {
		return
	}

	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-sub:
			if !writeRooms() {
				return
			}
		}
	}
}

func (h *wheelHub) notifyLobbySubscribers() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.lobbySubs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *wheelRoom) addConn(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[conn] = struct{}{}
}

func (r *wheelRoom) removeConn(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, conn)
}

func (r *wheelRoom) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn := range r.clients {
		r.writeToConnLocked(conn, wheelWSMessage{Type: "room_missing", Error: "Room deleted", Redirect: "/"})
		_ = conn.Close()
	}
	r.clients = make(map[*websocket.Conn]struct{})
}

// stateMessage trails every batch of events so clients know what to ask next.
func (r *wheelRoom) stateMessageLocked() wheelWSMessage {
	res := r.round.Result()
	msg := wheelWSMessage{
		Type:    "state",
		RoundID: r.round.ID(),
		State:   r.round.State().String(),
		Seed:    res.Seed,
	}
	if kind := r.round.Pending(); kind != wheel.ConfirmNone {
		msg.Kind = kind.String()
	}
	return msg
}

func (r *wheelRoom) sendState(conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.round.Snapshot() {
		r.writeToConnLocked(conn, eventMessage(ev))
	}
	r.writeToConnLocked(conn, r.stateMessageLocked())
}

// apply runs one round operation and broadcasts its events. Errors go back
// to the sender only.
func (r *wheelRoom) apply(conn *websocket.Conn, op func(*wheel.Round) ([]wheel.Event, error)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	events, err := op(r.round)
	if err != nil {
		r.writeToConnLocked(conn, wheelWSMessage{Type: "error", Error: err.Error()})
		return false
	}
	for _, ev := range events {
		r.broadcastLocked(eventMessage(ev))
	}
	r.broadcastLocked(r.stateMessageLocked())
	return true
}

func (r *wheelRoom) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.round.Reset()
	r.broadcastLocked(r.stateMessageLocked())
}

func (r *wheelRoom) canRespin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return respinnable(r.round.State())
}

func respinnable(s wheel.State) bool {
	return s == wheel.StateIdle || s == wheel.StateDecided
}

// replaceRound swaps in round unless another client already started one.
func (r *wheelRoom) replaceRound(round *wheel.Round) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !respinnable(r.round.State()) {
		return false
	}
	r.round.Reset()
	r.round = round
	for _, ev := range round.Snapshot() {
		r.broadcastLocked(eventMessage(ev))
	}
	r.broadcastLocked(r.stateMessageLocked())
	return true
}

func (r *wheelRoom) broadcastLocked(msg wheelWSMessage) {
	for conn := range r.clients {
		r.writeToConnLocked(conn, msg)
	}
}

// reply sends msg to conn alone. Connections allow one writer at a time, so
// every write happens under r.mu.
func (r *wheelRoom) reply(conn *websocket.Conn, msg wheelWSMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeToConnLocked(conn, msg)
}

func (r *wheelRoom) writeToConnLocked(conn *websocket.Conn, msg wheelWSMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		_ = conn.Close()
	}
}

func (r *wheelRoom) summary() wheelRoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.round.Result()
	members := 0
	if cat := r.round.Catalogue(); cat != nil {
		members = len(cat.Members)
	}
	return wheelRoomSummary{
		RoomID:      r.id,
		RoundID:     r.round.ID(),
		State:       r.round.State().String(),
		Members:     members,
		PartyCount:  r.round.Party().ActiveCount(),
		RingSize:    r.round.RingSize(),
		Pick:        res.Pick,
		Connections: len(r.clients),
	}
}
