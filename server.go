package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lxing/wheel/internal/wheel"
)

var (
	errRoomNotFound  = errors.New("room not found")
	errRoomForbidden = errors.New("room owner mismatch")
)

type createRoomRequest struct {
	// Seed replays a previous round when non-zero.
	Seed uint64 `json:"seed,omitempty"`
}

type createRoomResponse struct {
	RoomID  string `json:"room_id"`
	RoundID string `json:"round_id"`
	Created bool   `json:"created"`
}

type deleteRoomResponse struct {
	RoomID  string `json:"room_id"`
	Deleted bool   `json:"deleted"`
}

// wheelWSMessage is both the client command and the server event envelope.
type wheelWSMessage struct {
	Type     string `json:"type"`
	Member   int    `json:"member,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Yes      bool   `json:"yes,omitempty"`
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`

	RoundID        string        `json:"round_id,omitempty"`
	State          string        `json:"state,omitempty"`
	Seed           uint64        `json:"seed,omitempty"`
	Members        []string      `json:"members,omitempty"`
	Active         []string      `json:"active,omitempty"`
	Name           string        `json:"name,omitempty"`
	Window         *wheel.Window `json:"window,omitempty"`
	Count          *int          `json:"count,omitempty"`
	Remaining      *int          `json:"remaining,omitempty"`
	IncludePending bool          `json:"include_pending,omitempty"`
	Frame          int           `json:"frame,omitempty"`
	Total          int           `json:"total,omitempty"`
	Reason         string        `json:"reason,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventMessage maps a display event onto the wire.
func eventMessage(ev wheel.Event) wheelWSMessage {
	switch ev := ev.(type) {
	case wheel.ShowRoster:
		return wheelWSMessage{Type: "roster", Members: ev.Members}
	case wheel.ShowParty:
		return wheelWSMessage{Type: "party", Active: ev.Active}
	case wheel.ShowRejected:
		return wheelWSMessage{Type: "rejected", Member: ev.Member, Error: ev.Reason}
	case wheel.ShowPrompt:
		return wheelWSMessage{Type: "prompt", Kind: ev.Kind.String()}
	case wheel.ShowFilteredCount:
		return wheelWSMessage{Type: "filtered", Count: intPtr(ev.Count), IncludePending: ev.IncludePending}
	case wheel.ShowSpinFrame:
		return wheelWSMessage{Type: "spin_frame", Window: windowPtr(ev.Window), Frame: ev.Frame, Total: ev.Total}
	case wheel.ShowSelection:
		return wheelWSMessage{Type: "selection", Window: windowPtr(ev.Window), Remaining: intPtr(ev.Remaining)}
	case wheel.ShowRemoved:
		return wheelWSMessage{Type: "removed", Name: ev.Name, Remaining: intPtr(ev.Remaining)}
	case wheel.ShowFinal:
		return wheelWSMessage{Type: "final", Window: windowPtr(ev.Window), Remaining: intPtr(ev.Remaining)}
	case wheel.ShowEmptyResult:
		return wheelWSMessage{Type: "empty", Reason: string(ev.Reason)}
	default:
		return wheelWSMessage{Type: "error", Error: fmt.Sprintf("unknown event %T", ev)}
	}
}

func intPtr(n int) *int { return &n }

func windowPtr(w wheel.Window) *wheel.Window { return &w }

func isValidDeviceID(value string) bool {
	if value == "" || len(value) > 128 {
		return false
	}
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			continue
		}
		switch r {
		case '-', '_', '.', ':':
			continue
		default:
			return false
		}
	}
	return true
}

func requesterDeviceIDFromRequest(r *http.Request) (string, error) {
	if r == nil {
		return "", errors.New("device_id required")
	}
	candidate := strings.TrimSpace(r.Header.Get("X-Device-ID"))
	if candidate == "" {
		candidate = strings.TrimSpace(r.URL.Query().Get("device_id"))
	}
	if !isValidDeviceID(candidate) {
		return "", errors.New("valid device_id required")
	}
	return candidate, nil
}

// newRound loads a fresh catalogue and opens a round on it.
func (h *wheelHub) newRound(ctx context.Context, seed uint64) (*wheel.Round, error) {
	cat, err := h.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	var sp wheel.Spinner
	if seed != 0 {
		sp = wheel.NewSeededSpinner(seed)
	} else {
		sp, err = h.newSpinner()
		if err != nil {
			return nil, fmt.Errorf("create spinner: %w", err)
		}
	}
	return wheel.NewRound(cat, sp)
}

func (h *wheelHub) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.handleListRooms(w)
		return
	}
	if r.Method == http.MethodDelete {
		h.handleDeleteRoom(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	requesterDeviceID, err := requesterDeviceIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	round, err := h.newRound(r.Context(), req.Seed)
	if err != nil {
		if errors.Is(err, wheel.ErrNoData) {
			http.Error(w, "catalogue has no members", http.StatusUnprocessableEntity)
			return
		}
		log.Printf("create room: %v", err)
		http.Error(w, "failed to load catalogue", http.StatusBadGateway)
		return
	}

	room := &wheelRoom{
		ownerDeviceID: requesterDeviceID,
		round:         round,
		clients:       make(map[*websocket.Conn]struct{}),
	}

	h.mu.Lock()
	if h.ownerAlreadyHasRoomLocked(requesterDeviceID) {
		h.mu.Unlock()
		http.Error(w, "only one room per device is allowed", http.StatusConflict)
		return
	}
	room.id = h.nextRoomIDLocked()
	h.rooms[room.id] = room
	h.mu.Unlock()
	h.notifyLobbySubscribers()
	log.Printf("room %s opened round %s", room.id, round.ID())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(createRoomResponse{RoomID: room.id, RoundID: round.ID(), Created: true})
}

func (h *wheelHub) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		http.Error(w, "room_id query param required", http.StatusBadRequest)
		return
	}
	requesterDeviceID, err := requesterDeviceIDFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.deleteRoom(roomID, requesterDeviceID); err != nil {
		if errors.Is(err, errRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, errRoomForbidden) {
			http.Error(w, "only the creator may delete this room", http.StatusForbidden)
			return
		}
		http.Error(w, "failed to delete room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(deleteRoomResponse{RoomID: roomID, Deleted: true})
}

func (h *wheelHub) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")

	h.mu.RLock()
	room := h.rooms[roomID]
	h.mu.RUnlock()
	if room == nil {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(wheelWSMessage{
			Type:     "room_missing",
			Error:    "Room not found",
			Redirect: "/",
		})
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	room.addConn(conn)
	h.notifyLobbySubscribers()
	defer func() {
		room.removeConn(conn)
		h.notifyLobbySubscribers()
	}()

	room.sendState(conn)

	for {
		var msg wheelWSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		changed := false
		switch msg.Type {
		case "state":
			room.sendState(conn)
		case "toggle":
			changed = room.apply(conn, func(round *wheel.Round) ([]wheel.Event, error) {
				events, err := round.Toggle(msg.Member)
				if errors.Is(err, wheel.ErrOutOfRange) {
					return events, nil
				}
				return events, err
			})
		case "end_party":
			changed = room.apply(conn, (*wheel.Round).EndPartySelection)
		case "confirm":
			kind, err := wheel.ParseConfirmKind(msg.Kind)
			if err != nil {
				room.reply(conn, wheelWSMessage{Type: "error", Error: err.Error()})
				continue
			}
			if kind == wheel.ConfirmSpinAgain {
				changed = h.spinAgain(r.Context(), room, conn, msg.Yes)
				break
			}
			changed = room.apply(conn, func(round *wheel.Round) ([]wheel.Event, error) {
				return round.Confirm(kind, msg.Yes)
			})
		case "reset":
			room.reset()
			changed = true
		default:
			room.reply(conn, wheelWSMessage{Type: "error", Error: fmt.Sprintf("unknown message type %q", msg.Type)})
			continue
		}
		if changed {
			h.notifyLobbySubscribers()
		}
	}
}

// spinAgain replaces an idle or decided round with a fresh one.
func (h *wheelHub) spinAgain(ctx context.Context, room *wheelRoom, conn *websocket.Conn, yes bool) bool {
	if !yes {
		return false
	}
	if !room.canRespin() {
		room.reply(conn, wheelWSMessage{
			Type:  "error",
			Error: fmt.Sprintf("%v: round is still running", wheel.ErrWrongState),
		})
		return false
	}
	round, err := h.newRound(ctx, 0)
	if err != nil {
		if errors.Is(err, wheel.ErrNoData) {
			room.reply(conn, eventMessage(wheel.ShowEmptyResult{Reason: wheel.ReasonNoData}))
			return false
		}
		room.reply(conn, wheelWSMessage{Type: "error", Error: err.Error()})
		return false
	}
	if !room.replaceRound(round) {
		room.reply(conn, wheelWSMessage{Type: "error", Error: "round changed while loading"})
		return false
	}
	log.Printf("room %s opened round %s", room.id, round.ID())
	return true
}

func (h *wheelHub) ownerAlreadyHasRoomLocked(deviceID string) bool {
	for _, room := range h.rooms {
		if room.ownerDeviceID == deviceID {
			return true
		}
	}
	return false
}

func (h *wheelHub) deleteRoom(roomID, requesterDeviceID string) error {
	h.mu.Lock()
	room := h.rooms[roomID]
	if room == nil {
		h.mu.Unlock()
		return errRoomNotFound
	}
	if room.ownerDeviceID != requesterDeviceID {
		h.mu.Unlock()
		return errRoomForbidden
	}
	delete(h.rooms, roomID)
	h.mu.Unlock()

	room.closeAll()
	h.notifyLobbySubscribers()
	log.Printf("room %s deleted", roomID)
	return nil
}

func randomRoomID() string {
	left := roomIDAdjectives[randomInt(len(roomIDAdjectives))]
	right := roomIDNouns[randomInt(len(roomIDNouns))]
	return left + "-" + right
}

func (h *wheelHub) nextRoomIDLocked() string {
	for attempt := 0; attempt < 32; attempt++ {
		candidate := randomRoomID()
		if _, exists := h.rooms[candidate]; !exists {
			return candidate
		}
	}
	return fmt.Sprintf("room-%d", time.Now().UnixNano())
}

func randomInt(max int) int {
	if max <= 1 {
		return 0
	}
	var raw [2]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return int(time.Now().UnixNano() % int64(max))
	}
	return int(binary.BigEndian.Uint16(raw[:])) % max
}

var roomIDAdjectives = []string{
	"amber", "brave", "brisk", "calm", "clever", "cozy", "crisp", "dapper",
	"eager", "fancy", "fuzzy", "gentle", "glossy", "happy", "jolly", "keen",
	"lively", "lucky", "mellow", "mighty", "nimble", "peppy", "plucky", "quiet",
	"rapid", "rustic", "sandy", "shiny", "snappy", "sunny", "swift", "witty",
}

var roomIDNouns = []string{
	"axle", "cog", "dial", "gear", "hub",
	"pin", "rim", "rotor", "spoke", "spindle",
}
