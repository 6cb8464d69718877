// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gitter

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestRooms(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requireAuth(t, request)
		if request.URL.Path != "/v1/rooms" {
			t.Errorf("path = %s", request.URL.Path)
		}
		writeJSON(t, writer, []Room{
			{ID: "r1", Name: "gitterHQ/sandbox", URI: "gitterHQ/sandbox", UserCount: 4},
			{ID: "r2", Name: "Someone", OneToOne: true, User: &User{Username: "someone"}},
		})
	}))

	rooms, err := client.Rooms(context.Background())
	if err != nil {
		t.Fatalf("Rooms failed: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	if rooms[0].DisplayName() != "gitterHQ/sandbox" || rooms[1].DisplayName() != "@someone" {
		t.Errorf("display names = %q, %q", rooms[0].DisplayName(), rooms[1].DisplayName())
	}
}

func TestJoinRoom(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requireAuth(t, request)
		if request.Method != http.MethodPost || request.URL.Path != "/v1/rooms" {
			t.Errorf("request = %s %s", request.Method, request.URL.Path)
		}
		if got := request.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", got)
		}
		if err := request.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := request.PostForm.Get("uri"); got != "gitterHQ/sandbox" {
			t.Errorf("uri = %q", got)
		}
		writeJSON(t, writer, Room{ID: "r1", URI: "gitterHQ/sandbox"})
	}))

	room, err := client.JoinRoom(context.Background(), " /gitterHQ/sandbox/ ")
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if room.ID != "r1" {
		t.Errorf("room = %+v", room)
	}

	if _, err := client.JoinRoom(context.Background(), "  "); err == nil {
		t.Error("JoinRoom with blank URI succeeded")
	}
}

func TestUnreadItems(t *testing.T) {
	var marked []string
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requireAuth(t, request)
		if request.URL.Path != "/v1/user/u1/rooms/r1/unreadItems" {
			t.Errorf("path = %s", request.URL.Path)
		}
		switch request.Method {
		case http.MethodGet:
			writeJSON(t, writer, UnreadItems{Chat: []string{"m1", "m2"}, Mention: []string{"m2"}})
		case http.MethodPost:
			if got := request.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
			var body struct {
				Chat []string `json:"chat"`
			}
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			marked = body.Chat
			writeJSON(t, writer, map[string]bool{"success": true})
		}
	}))

	items, err := client.UnreadItems(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("UnreadItems failed: %v", err)
	}
	if len(items.Chat) != 2 || len(items.Mention) != 1 {
		t.Errorf("items = %+v", items)
	}

	if err := client.MarkRead(context.Background(), "u1", "r1", items.Chat); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if len(marked) != 2 || marked[0] != "m1" || marked[1] != "m2" {
		t.Errorf("server saw chat = %v", marked)
	}

	if err := client.MarkRead(context.Background(), "u1", "", []string{"m1"}); err == nil {
		t.Error("MarkRead with empty room ID succeeded")
	}
}
