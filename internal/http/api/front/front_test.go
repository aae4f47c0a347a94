package front

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumenlearn/tutor-backend/internal/chat"
	"github.com/lumenlearn/tutor-backend/internal/config"
	"github.com/lumenlearn/tutor-backend/internal/db"
	"github.com/lumenlearn/tutor-backend/internal/llm"
	"github.com/lumenlearn/tutor-backend/internal/models"
	"github.com/lumenlearn/tutor-backend/internal/ratelimit"
	"github.com/lumenlearn/tutor-backend/internal/security"
)

type stubGenerator struct {
	reply string
}

func (s *stubGenerator) TutorReply(_ context.Context, _ string, _ []llm.Turn) (string, error) {
	return s.reply, nil
}

func newTestRouter(t *testing.T, access config.AccessConfig) (*gin.Engine, *gorm.DB, config.JWTConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	jwtCfg := config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}
	limiter := ratelimit.NewManager(ratelimit.NewMemoryStore(), nil, nil, nil)
	svc := chat.NewService(conn, limiter, &stubGenerator{reply: "Great thinking! 🌟"})

	r := gin.New()
	RegisterFrontRoutes(r, conn, jwtCfg, access, svc)
	return r, conn, jwtCfg
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if errEncode := json.NewEncoder(&buf).Encode(body); errEncode != nil {
			t.Fatalf("encode body: %v", errEncode)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueToken_FlatPayload(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t, config.AccessConfig{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/token", "", gin.H{
		"student_id": "stu-7",
		"email":      "kid@school.edu",
		"name":       "Kai",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token   string `json:"token"`
		Role    string `json:"role"`
		IsAdmin bool   `json:"is_admin"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if resp.Role != security.RoleStudent || resp.IsAdmin {
		t.Fatalf("expected student token, got %+v", resp)
	}

	claims, errParse := security.ParseToken(jwtCfg.Secret, resp.Token)
	if errParse != nil {
		t.Fatalf("parse issued token: %v", errParse)
	}
	if claims.PrincipalID != "stu-7" || claims.Email != "kid@school.edu" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var student models.Student
	if errFind := conn.Where("student_id = ?", "stu-7").First(&student).Error; errFind != nil {
		t.Fatalf("student not provisioned: %v", errFind)
	}
}

func TestIssueToken_WebhookPayloadAdmin(t *testing.T) {
	access := config.AccessConfig{AdminEmails: []string{"principal@school.edu"}}
	r, conn, _ := newTestRouter(t, access)

	w := doJSON(t, r, http.MethodPost, "/api/auth/token", "", gin.H{
		"data": gin.H{
			"user": gin.H{
				"id":       "adm-1",
				"email":    "Principal@School.edu",
				"username": "Pat",
			},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Role    string `json:"role"`
		IsAdmin bool   `json:"is_admin"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if resp.Role != security.RoleAdmin || !resp.IsAdmin {
		t.Fatalf("expected admin token, got %+v", resp)
	}

	var admin models.Admin
	if errFind := conn.Where("admin_id = ?", "adm-1").First(&admin).Error; errFind != nil {
		t.Fatalf("admin not provisioned: %v", errFind)
	}
	if !admin.Active {
		t.Fatalf("expected active admin")
	}
}

func TestIssueToken_MissingFields(t *testing.T) {
	r, _, _ := newTestRouter(t, config.AccessConfig{})

	w := doJSON(t, r, http.MethodPost, "/api/auth/token", "", gin.H{"email": "kid@school.edu"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestIssueToken_RejectsBadSignature(t *testing.T) {
	access := config.AccessConfig{WebhookSecret: "hook-secret"}
	r, _, _ := newTestRouter(t, access)

	body := []byte(`{"student_id":"stu-1","email":"kid@school.edu"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestChat_RequiresAuth(t *testing.T) {
	r, _, _ := newTestRouter(t, config.AccessConfig{})

	w := doJSON(t, r, http.MethodPost, "/api/chat", "", gin.H{"message": "hi there"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestChatAndHistoryFlow(t *testing.T) {
	r, conn, jwtCfg := newTestRouter(t, config.AccessConfig{})

	student := models.Student{StudentID: "stu-9", Email: "nine@school.edu", Name: "Nia", LastActive: time.Now()}
	if errCreate := conn.Create(&student).Error; errCreate != nil {
		t.Fatalf("seed student: %v", errCreate)
	}
	token, errSign := security.SignToken(jwtCfg.Secret, "stu-9", "nine@school.edu", "Nia", security.RoleStudent, time.Hour, time.Now())
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}

	w := doJSON(t, r, http.MethodPost, "/api/chat", token, gin.H{"message": "how do magnets work?"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var chatResp struct {
		Reply     string `json:"reply"`
		SessionID string `json:"session_id"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &chatResp); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if chatResp.Reply != "Great thinking! 🌟" || chatResp.SessionID == "" {
		t.Fatalf("unexpected chat response: %+v", chatResp)
	}

	w = doJSON(t, r, http.MethodGet, "/api/history?limit=10", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var histResp struct {
		History []struct {
			Role    string `json:"role"`
			Message string `json:"message"`
		} `json:"history"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &histResp); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(histResp.History) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(histResp.History))
	}
	if histResp.History[0].Role != models.RoleStudent || histResp.History[1].Role != models.RoleTutor {
		t.Fatalf("unexpected history order: %+v", histResp.History)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	r, _, jwtCfg := newTestRouter(t, config.AccessConfig{})

	token, errSign := security.SignToken(jwtCfg.Secret, "stu-1", "kid@school.edu", "", security.RoleStudent, time.Hour, time.Now())
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}

	w := doJSON(t, r, http.MethodPost, "/api/chat", token, gin.H{"message": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
