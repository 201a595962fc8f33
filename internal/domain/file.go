package domain

import "time"

// File is a workspace file persisted per room.
type File struct {
	ID        string    `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	Folder    string    `json:"folder"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snippet is a shared code link payload.
type Snippet struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Code      string    `json:"code"`
	Stdin     string    `json:"stdin"`
	CreatedAt time.Time `json:"createdAt"`
}
