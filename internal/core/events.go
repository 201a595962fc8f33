package core

import "github.com/pairpad/pairpad/internal/domain"

// Client→server event names dispatched by the control adapter.
const (
	MsgJoinRoom    = "join_room"
	MsgGrantAccess = "grant_access"
	MsgDenyAccess  = "deny_access"
	MsgTyping      = "typing"
	MsgRunTrigger  = "run_trigger"
	MsgRunResult   = "run_result"
)

// RosterEntry is one live (identity, role) pair in a room_users payload.
type RosterEntry struct {
	Identity string      `json:"identity"`
	Role     domain.Role `json:"role"`
}

type AccessGrantedEvent struct {
	Type string `json:"type"`
}

type AccessDeniedEvent struct {
	Type string `json:"type"`
}

type StatusUpdateEvent struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RequestEntryEvent struct {
	Type     string `json:"type"`
	Identity string `json:"identity"`
	ConnID   ConnID `json:"connectionId"`
}

type RequestCancelledEvent struct {
	Type   string `json:"type"`
	ConnID ConnID `json:"connectionId"`
}

type RoomUsersEvent struct {
	Type  string        `json:"type"`
	Users []RosterEntry `json:"users"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	Identity string `json:"identity"`
}

type RunStartEvent struct {
	Type     string `json:"type"`
	Identity string `json:"identity"`
}

type RunCompleteEvent struct {
	Type string   `json:"type"`
	Logs []string `json:"logs"`
}

type UserLeftEvent struct {
	Type     string `json:"type"`
	Identity string `json:"identity"`
}

func AccessGranted() AccessGrantedEvent { return AccessGrantedEvent{Type: "access_granted"} }
func AccessDenied() AccessDeniedEvent   { return AccessDeniedEvent{Type: "access_denied"} }

func StatusUpdate(status, message string) StatusUpdateEvent {
	return StatusUpdateEvent{Type: "status_update", Status: status, Message: message}
}

func RequestEntry(identity string, id ConnID) RequestEntryEvent {
	return RequestEntryEvent{Type: "request_entry", Identity: identity, ConnID: id}
}

func RequestCancelled(id ConnID) RequestCancelledEvent {
	return RequestCancelledEvent{Type: "request_cancelled", ConnID: id}
}

func RoomUsers(users []RosterEntry) RoomUsersEvent {
	return RoomUsersEvent{Type: "room_users", Users: users}
}

func Typing(identity string) TypingEvent { return TypingEvent{Type: "typing", Identity: identity} }

func RunStart(identity string) RunStartEvent {
	return RunStartEvent{Type: "run_start", Identity: identity}
}

func RunComplete(logs []string) RunCompleteEvent {
	return RunCompleteEvent{Type: "run_complete", Logs: logs}
}

func UserLeft(identity string) UserLeftEvent {
	return UserLeftEvent{Type: "user_left", Identity: identity}
}
