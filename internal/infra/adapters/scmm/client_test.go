//go:build !integration

package scmm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLatestItems(t *testing.T) {
	// 1. Arrange: a fake index serving two items, newest first.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("sortBy") != "timeCreated" || q.Get("sortByOrder") != "desc" {
			t.Errorf("unexpected sort params: %v", q)
		}
		if q.Get("count") != "25" {
			t.Errorf("wanted count=25, got %q", q.Get("count"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 2,
			"items": [
				{
					"id": 9001, "name": "Neon Door", "creatorId": 76561198000000001,
					"creatorName": "fresh_artist", "itemType": "Door",
					"isAccepted": true, "timeCreated": "2026-08-29T10:00:00Z",
					"marketSellOrderLowestPrice": 450, "workshopFileId": 333
				},
				{
					"id": 9000, "name": "Old Rug", "creatorId": 76561198000000002,
					"isAccepted": false, "timeCreated": "2026-08-01T10:00:00"
				}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	// 2. Act
	items, err := client.LatestItems(context.Background(), 25)

	// 3. Assert
	if err != nil {
		t.Fatalf("LatestItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("wanted 2 items, got %d", len(items))
	}
	first := items[0]
	if first.ID != 9001 || first.Name != "Neon Door" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.CreatorID != 76561198000000001 || first.CreatorName != "fresh_artist" {
		t.Errorf("creator fields not mapped: %+v", first)
	}
	if !first.IsAccepted || first.SellOrderLowestPriceCents != 450 || first.WorkshopFileID != 333 {
		t.Errorf("market fields not mapped: %+v", first)
	}
	if first.TimeCreated.IsZero() {
		t.Error("timeCreated was not parsed")
	}
	// The index sometimes sends local timestamps without a zone designator.
	if items[1].TimeCreated.IsZero() {
		t.Error("zone-less timeCreated was not parsed")
	}
}

func TestLatestItemsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	if _, err := client.LatestItems(context.Background(), 10); err == nil {
		t.Fatal("expected an error for a 502 response")
	}
}

func TestLatestItemsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, time.Second)
	_, err := client.LatestItems(context.Background(), 10)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	// Only the profile endpoint maps 404 onto the missing-profile sentinel.
	if errors.Is(err, ErrProfileNotFound) {
		t.Errorf("item 404 must stay a plain status error, got %v", err)
	}
}

func TestCreatorItemCount(t *testing.T) {
	t.Run("should prefer the total field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("creatorId"); got != "76561198000000001" {
				t.Errorf("unexpected creatorId %q", got)
			}
			w.Write([]byte(`{"total": 140, "items": [{"id": 1}]}`))
		}))
		defer srv.Close()

		client, _ := NewClient(srv.URL, time.Second)
		n, err := client.CreatorItemCount(context.Background(), "76561198000000001")
		if err != nil {
			t.Fatalf("CreatorItemCount failed: %v", err)
		}
		if n != 140 {
			t.Errorf("wanted 140, got %d", n)
		}
	})

	t.Run("should fall back to counting items", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [{"id": 1}, {"id": 2}]}`))
		}))
		defer srv.Close()

		client, _ := NewClient(srv.URL, time.Second)
		n, err := client.CreatorItemCount(context.Background(), "x")
		if err != nil {
			t.Fatalf("CreatorItemCount failed: %v", err)
		}
		if n != 2 {
			t.Errorf("wanted 2, got %d", n)
		}
	})
}

func TestProfileExists(t *testing.T) {
	t.Run("should report true for a known profile", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/profile/76561198000000001/summary" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			w.Write([]byte(`{"name": "veteran"}`))
		}))
		defer srv.Close()

		client, _ := NewClient(srv.URL, time.Second)
		ok, err := client.ProfileExists(context.Background(), "76561198000000001")
		if err != nil {
			t.Fatalf("ProfileExists failed: %v", err)
		}
		if !ok {
			t.Error("wanted true for an existing profile")
		}
	})

	t.Run("should map 404 to false without error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client, _ := NewClient(srv.URL, time.Second)
		ok, err := client.ProfileExists(context.Background(), "nobody")
		if err != nil {
			t.Fatalf("ProfileExists failed: %v", err)
		}
		if ok {
			t.Error("wanted false for a missing profile")
		}
	})

	t.Run("should surface other failures", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client, _ := NewClient(srv.URL, time.Second)
		if _, err := client.ProfileExists(context.Background(), "x"); err == nil {
			t.Fatal("expected an error for a 500 response")
		}
	})
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", time.Second); err == nil {
		t.Error("expected an error for an empty base url")
	}
}
