package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vitatrack/internal/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestSheetsService_WithMockAPI(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	srv, _ := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	s := &SheetsService{
		service:       srv,
		spreadsheetID: "progress_tid",
		rowCache:      make(map[int64]int),
	}

	t.Run("TestConnection", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/progress_tid/values/Progress!A1", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"User ID"}}})
		})
		if err := s.TestConnection(ctx); err != nil {
			t.Errorf("TestConnection failed: %v", err)
		}
	})

	t.Run("WarmUpCache", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/progress_tid/values/Progress!A:A", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{
				Values: [][]interface{}{{"User ID"}, {"123"}, {"456"}},
			})
		})
		if err := s.WarmUpCache(ctx); err != nil {
			t.Errorf("WarmUpCache failed: %v", err)
		}
		if row, ok := s.getCachedRow(123); !ok || row != 2 {
			t.Errorf("Expected row 2 for ID 123, got %d", row)
		}
		if row, ok := s.getCachedRow(456); !ok || row != 3 {
			t.Errorf("Expected row 3 for ID 456, got %d", row)
		}
	})

	t.Run("UpsertProfileRow_Append", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/progress_tid/values/Progress!A:A:append", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
				Updates: &sheets.UpdateValuesResponse{
					UpdatedRange: "Progress!A10:L10",
				},
			})
		})
		profile := &models.Profile{UserID: 789, City: "Moscow", UpdatedAt: time.Now()}
		if err := s.UpsertProfileRow(ctx, profile); err != nil {
			t.Errorf("UpsertProfileRow failed: %v", err)
		}
		if row, _ := s.getCachedRow(789); row != 10 {
			t.Errorf("Expected cached row 10, got %d", row)
		}
	})

	t.Run("UpsertProfileRow_Update", func(t *testing.T) {
		s.setCachedRow(123, 2)
		called := false
		mux.HandleFunc("/v4/spreadsheets/progress_tid/values/Progress!A2:L2", func(w http.ResponseWriter, r *http.Request) {
			called = true
			json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		})
		profile := &models.Profile{UserID: 123, City: "Kazan", UpdatedAt: time.Now()}
		if err := s.UpsertProfileRow(ctx, profile); err != nil {
			t.Errorf("UpsertProfileRow failed: %v", err)
		}
		if !called {
			t.Error("Expected in-place update for cached row")
		}
	})
}

func TestParseRowNumber(t *testing.T) {
	if row, ok := parseRowNumber("Progress!A10:L10"); !ok || row != 10 {
		t.Errorf("parseRowNumber = %d, %v; want 10, true", row, ok)
	}
	if row, ok := parseRowNumber("Progress!A7"); !ok || row != 7 {
		t.Errorf("parseRowNumber = %d, %v; want 7, true", row, ok)
	}
	if _, ok := parseRowNumber("garbage"); ok {
		t.Error("parseRowNumber accepted garbage range")
	}
}
