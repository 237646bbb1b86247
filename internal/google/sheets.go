package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"vitatrack/internal/models"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const progressSheet = "Progress"

// SheetsService зеркалирует прогресс пользователей в Google Таблицу:
// одна строка на пользователя, обновляется на месте. Номера строк
// кешируются, чтобы не сканировать лист на каждое обновление.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	rowCache map[int64]int
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}, nil
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, progressSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// WarmUpCache читает колонку ID и запоминает, в какой строке чей прогресс.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, progressSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("warm up cache: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Строка 1 — заголовки
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(fmt.Sprintf("%v", row[0]), 10, 64)
		if err != nil {
			continue
		}
		s.rowCache[id] = i + 1
	}
	return nil
}

// UpsertProfileRow обновляет строку пользователя либо дописывает новую.
func (s *SheetsService) UpsertProfileRow(ctx context.Context, profile *models.Profile) error {
	row := []interface{}{
		profile.UserID,
		profile.City,
		profile.WeightKg,
		profile.HeightCm,
		profile.Age,
		profile.ActivityMinutes,
		profile.WaterGoalMl,
		profile.LoggedWaterMl,
		profile.CalorieGoalKcal,
		profile.LoggedCalories,
		profile.BurnedCalories,
		profile.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}

	if rowNum, ok := s.getCachedRow(profile.UserID); ok {
		rangeData := fmt.Sprintf("%s!A%d:L%d", progressSheet, rowNum, rowNum)
		_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	}

	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, progressSheet+"!A:A", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if rowNum, ok := parseRowNumber(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(profile.UserID, rowNum)
		}
	}
	return nil
}

func (s *SheetsService) getCachedRow(userID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rowCache[userID]
	return row, ok
}

func (s *SheetsService) setCachedRow(userID int64, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache[userID] = row
}

// parseRowNumber достает номер строки из диапазона вида "Progress!A10:L10".
func parseRowNumber(updatedRange string) (int, bool) {
	idx := strings.Index(updatedRange, "!A")
	if idx < 0 {
		return 0, false
	}
	rest := updatedRange[idx+2:]
	end := strings.IndexByte(rest, ':')
	if end > 0 {
		rest = rest[:end]
	}
	row, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return row, true
}
