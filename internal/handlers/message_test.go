package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/conversation"
	"messenger-service/internal/middleware"
	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
	"messenger-service/internal/signaling"
)

type nopPusher struct{}

func (nopPusher) Push(string, any) bool { return false }

func setupMessageRouter(repo repositories.MessageRepository) (*gin.Engine, *mocks.MediaStoreMock) {
	gin.SetMode(gin.TestMode)
	engine := conversation.NewEngine(repo, nopPusher{})
	mediaStore := new(mocks.MediaStoreMock)
	handler := NewMessageHandler(engine, mediaStore, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "A")
		c.Next()
	})
	r.POST("/send", handler.Send)
	r.POST("/send-voice", handler.SendVoice)
	r.POST("/get", handler.GetConversation)
	r.GET("/recent", handler.Recent)
	r.POST("/react", handler.React)
	r.POST("/revoke", handler.Revoke)
	r.POST("/delete-for-me", handler.DeleteForMe)
	r.POST("/delete-conversation", handler.DeleteConversationForMe)
	return r, mediaStore
}

func TestSendMessageSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	stored := models.Message{ID: "m1", FromUserID: "A", ToUserID: "B", Text: "hello", MessageType: models.TypeText}
	repo.On("CreateMessage", mock.Anything, repositories.CreateMessageParams{
		FromUserID: "A", ToUserID: "B", Text: "hello", MessageType: models.TypeText,
	}).Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/send", bytes.NewBufferString(`{"to_user_id":"B","text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool           `json:"success"`
		Message models.Message `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "A", resp.Message.FromUserID)
	assert.Equal(t, "B", resp.Message.ToUserID)
	assert.Equal(t, "hello", resp.Message.Text)
	repo.AssertExpectations(t)
}

func TestSendImageMessageSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, mediaStore := setupMessageRouter(repo)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("to_user_id", "B"))
	require.NoError(t, form.WriteField("text", "look"))
	part, err := form.CreateFormFile("image", "pic.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	mediaStore.On("Save", "pic.png", mock.Anything).
		Return("http://localhost:8083/uploads/pic.png", nil).Once()
	stored := models.Message{
		ID: "m1", FromUserID: "A", ToUserID: "B", Text: "look",
		MessageType: models.TypeImage, MediaURL: "http://localhost:8083/uploads/pic.png",
	}
	repo.On("CreateMessage", mock.Anything, repositories.CreateMessageParams{
		FromUserID: "A", ToUserID: "B", Text: "look",
		MessageType: models.TypeImage, MediaURL: "http://localhost:8083/uploads/pic.png",
	}).Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/send", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool           `json:"success"`
		Message models.Message `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.TypeImage, resp.Message.MessageType)
	assert.Equal(t, "http://localhost:8083/uploads/pic.png", resp.Message.MediaURL)
	mediaStore.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestSendMessageMissingRecipient(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/send", bytes.NewBufferString(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestGetConversationSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	msgs := []models.Message{{ID: "m1", FromUserID: "B", ToUserID: "A", Text: "hi"}}
	repo.On("GetConversation", mock.Anything, "A", "B", "A").Return(msgs, nil).Once()
	repo.On("MarkSeen", mock.Anything, "B", "A").Return(int64(1), nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/get", bytes.NewBufferString(`{"to_user_id":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success  bool             `json:"success"`
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Messages, 1)
	repo.AssertExpectations(t)
}

func TestRecentMessagesSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	repo.On("GetRecentMessages", mock.Anything, "A").Return([]models.Message(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/recent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success  bool             `json:"success"`
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Messages)
	repo.AssertExpectations(t)
}

func TestReactMissingMessageID(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/react", bytes.NewBufferString(`{"type":"👍"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReactNotFound(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	repo.On("UpsertReaction", mock.Anything, "missing", "A", "👍").
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/react", bytes.NewBufferString(`{"messageId":"missing","type":"👍"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	repo.AssertExpectations(t)
}

func TestRevokeByNonSenderForbidden(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	repo.On("RevokeMessage", mock.Anything, "m1", "A").
		Return(models.Message{}, repositories.ErrNotMessageSender).Once()

	req := httptest.NewRequest(http.MethodPost, "/revoke", bytes.NewBufferString(`{"messageId":"m1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteForMeSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	repo.On("HideMessageForUser", mock.Anything, "m1", "A").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/delete-for-me", bytes.NewBufferString(`{"messageId":"m1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteConversationSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	repo.On("HideConversationForUser", mock.Anything, "A", "B", "A").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/delete-conversation", bytes.NewBufferString(`{"to_user_id":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestSendVoiceWithoutAudio(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router, _ := setupMessageRouter(repo)

	req := httptest.NewRequest(http.MethodPost, "/send-voice", bytes.NewBufferString("to_user_id=B"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestCallOfferAlwaysSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCallHandler(signaling.NewRelay(nopPusher{}))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "C")
		c.Next()
	})
	r.POST("/call/offer", handler.Offer)

	req := httptest.NewRequest(http.MethodPost, "/call/offer", bytes.NewBufferString(`{"to_user_id":"A","sdp":"offer"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// The callee is offline (no channel), yet the relay reports success.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])
}
