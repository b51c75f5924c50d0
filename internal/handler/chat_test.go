package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"agribuddy/internal/ai"
	"agribuddy/internal/model"
	"agribuddy/internal/repository"
	"agribuddy/internal/service"
)

type fakeOrchestrator struct {
	result    *service.ChatResult
	err       error
	lastInput *service.ChatInput
	lastConv  string
}

func (f *fakeOrchestrator) Start(_ context.Context, in *service.ChatInput) (*service.ChatResult, error) {
	f.lastInput = in
	return f.result, f.err
}

func (f *fakeOrchestrator) Continue(_ context.Context, conversationID string, in *service.ChatInput) (*service.ChatResult, error) {
	f.lastConv = conversationID
	f.lastInput = in
	return f.result, f.err
}

func newChatRouter(orch *fakeOrchestrator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(orch, 15*1024*1024)
	r := gin.New()
	r.POST("/api/v1/chat/start", h.Start)
	r.POST("/api/v1/chat/:conversationId/message", h.Message)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatHandlerStart(t *testing.T) {
	Convey("POST /api/v1/chat/start", t, func() {
		orch := &fakeOrchestrator{
			result: &service.ChatResult{
				ConversationID: "conv-1",
				Reply:          "Gunakan pupuk NPK seimbang.",
				Source:         service.SourceGenerative,
			},
		}
		router := newChatRouter(orch)

		Convey("a JSON request returns 201 with the reply", func() {
			w := postJSON(router, "/api/v1/chat/start", gin.H{
				"user_id": "u1",
				"message": "Apa pupuk terbaik?",
			})
			So(w.Code, ShouldEqual, http.StatusCreated)

			var resp model.StartChatResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.ConversationID, ShouldEqual, "conv-1")
			So(resp.Reply, ShouldEqual, "Gunakan pupuk NPK seimbang.")
			So(orch.lastInput.UserID, ShouldEqual, "u1")
		})

		Convey("a missing user id is rejected with 400", func() {
			orch.err = fmt.Errorf("%w: user_id is required", service.ErrValidation)
			w := postJSON(router, "/api/v1/chat/start", gin.H{"message": "halo"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			var resp model.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, 40001)
		})

		Convey("quota exhaustion returns 429 with the apology", func() {
			orch.err = fmt.Errorf("%w: status 429", ai.ErrQuotaExceeded)
			w := postJSON(router, "/api/v1/chat/start", gin.H{"user_id": "u1", "message": "halo"})
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)

			var resp model.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, 42901)
			So(resp.Message, ShouldEqual, QuotaApology)
		})

		Convey("persistence failures return 500 with the storage code", func() {
			orch.err = fmt.Errorf("%w: disk on fire", service.ErrPersistence)
			w := postJSON(router, "/api/v1/chat/start", gin.H{"user_id": "u1", "message": "halo"})
			So(w.Code, ShouldEqual, http.StatusInternalServerError)

			var resp model.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, 50002)
		})

		Convey("a multipart request with a file reaches the service as an attachment", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			So(mw.WriteField("user_id", "u1"), ShouldBeNil)
			So(mw.WriteField("message", "ada apa dengan daun ini?"), ShouldBeNil)
			part, err := mw.CreateFormFile("file", "daun.jpg")
			So(err, ShouldBeNil)
			_, err = part.Write([]byte("fake-jpeg-bytes"))
			So(err, ShouldBeNil)
			So(mw.Close(), ShouldBeNil)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/start", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusCreated)
			So(orch.lastInput.Attachment, ShouldNotBeNil)
			So(orch.lastInput.Attachment.Filename, ShouldEqual, "daun.jpg")
			So(orch.lastInput.Attachment.Data, ShouldResemble, []byte("fake-jpeg-bytes"))
		})

		Convey("an oversized attachment is rejected with 400", func() {
			gin.SetMode(gin.TestMode)
			small := NewChatHandler(orch, 8)
			r := gin.New()
			r.POST("/api/v1/chat/start", small.Start)

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			So(mw.WriteField("user_id", "u1"), ShouldBeNil)
			part, _ := mw.CreateFormFile("file", "big.png")
			_, err := part.Write([]byte(strings.Repeat("x", 64)))
			So(err, ShouldBeNil)
			So(mw.Close(), ShouldBeNil)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/start", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)

			var resp model.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, 40002)
		})
	})
}

func TestChatHandlerMessage(t *testing.T) {
	Convey("POST /api/v1/chat/:conversationId/message", t, func() {
		orch := &fakeOrchestrator{
			result: &service.ChatResult{
				ConversationID: "conv-1",
				Reply:          "Dosisnya 250 kg per hektar.",
				Source:         service.SourceGenerative,
			},
		}
		router := newChatRouter(orch)

		Convey("a follow-up returns 200 and passes the path id through", func() {
			w := postJSON(router, "/api/v1/chat/conv-1/message", gin.H{
				"user_id": "u1",
				"message": "Berapa dosisnya?",
			})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(orch.lastConv, ShouldEqual, "conv-1")

			var resp model.ContinueChatResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Reply, ShouldEqual, "Dosisnya 250 kg per hektar.")
		})

		Convey("an unknown conversation returns 404", func() {
			orch.err = repository.ErrConversationNotFound
			w := postJSON(router, "/api/v1/chat/nope/message", gin.H{"user_id": "u1", "message": "halo"})
			So(w.Code, ShouldEqual, http.StatusNotFound)

			var resp model.ErrorResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, 40401)
		})
	})
}
