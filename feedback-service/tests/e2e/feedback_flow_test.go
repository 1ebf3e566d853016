//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"feedbackhub/feedback-service/internal/app/feedback/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// Адреса запущенных сервисов (docker-compose)
	AuthBaseURL     = "http://localhost:8080"
	FeedbackBaseURL = "http://localhost:8084"
)

// registerAndLogin регистрирует нового пользователя и возвращает access token
func registerAndLogin(t *testing.T, client *http.Client) string {
	t.Helper()

	reqBody := map[string]string{
		"email":        fmt.Sprintf("e2e-feedback-%d@example.com", time.Now().UnixNano()),
		"password":     "securepassword123",
		"display_name": "E2E Feedback User",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := client.Post(AuthBaseURL+"/auth/register", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var response struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	require.NotEmpty(t, response.Tokens.AccessToken)

	return response.Tokens.AccessToken
}

// TestFeedbackSubmissionFlow тестирует путь отзыва глазами клиента:
// 1. Регистрация через auth-service
// 2. Отправка отзыва
// 3. Отзыв виден в собственном списке со статусом pending
func TestFeedbackSubmissionFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	accessToken := registerAndLogin(t, client)

	// ==================== Step 1: Submit ====================
	t.Log("Step 1: Submitting feedback")

	submitReq := entity.SubmitFeedbackRequest{
		ProductName: "Bluetooth Speaker",
		Category:    "delivery",
		Comment:     "Package arrived three days later than promised",
		Rating:      2,
	}
	submitBody, _ := json.Marshal(submitReq)

	req, _ := http.NewRequest(http.MethodPost, FeedbackBaseURL+"/feedback", bytes.NewBuffer(submitBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode, "Submit should succeed")

	var record entity.FeedbackRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, entity.StatusPending, record.Status)
	assert.Equal(t, "E2E Feedback User", record.DisplayName)

	// ==================== Step 2: List Own Feedback ====================
	t.Log("Step 2: Listing own feedback")

	req, _ = http.NewRequest(http.MethodGet, FeedbackBaseURL+"/feedback", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list entity.FeedbackListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))

	require.Equal(t, 1, list.Total)
	assert.Equal(t, record.ID, list.Feedbacks[0].ID)

	// ==================== Step 3: Admin Endpoints Are Forbidden ====================
	t.Log("Step 3: Verifying admin endpoints reject customer")

	req, _ = http.NewRequest(http.MethodGet, FeedbackBaseURL+"/analytics/summary", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "Customer should not access analytics")

	req, _ = http.NewRequest(http.MethodGet, FeedbackBaseURL+"/feedback/export", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "Customer should not export feedback")
}

// TestFeedback_RequiresAuthentication проверяет что без токена доступа нет
func TestFeedback_RequiresAuthentication(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(FeedbackBaseURL + "/feedback")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
