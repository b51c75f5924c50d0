package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"agribuddy/internal/ai"
	"agribuddy/internal/model"
)

func TestRouterRoute(t *testing.T) {
	Convey("Router.Route", t, func() {
		ctx := context.Background()
		knowledge := &fakeKnowledge{entries: []model.KnowledgeEntry{werengEntry}}
		vision := &fakeVision{reply: "dari foto ini terlihat bercak daun"}
		text := &fakeText{reply: "jawaban generatif"}
		router := NewRouter(knowledge, vision, text)

		Convey("an attachment wins over everything, the knowledge base is never consulted", func() {
			att := &model.Attachment{Data: []byte("img"), MIMEType: "image/jpeg", Filename: "daun.jpg"}
			res, err := router.Route(ctx, nil, "hama wereng di daun ini?", att)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, SourceGenerative)
			So(res.Reply, ShouldEqual, vision.reply)
			So(knowledge.calls, ShouldEqual, 0)
			So(text.calls, ShouldEqual, 0)
			So(vision.lastAtt, ShouldEqual, att)
		})

		Convey("a knowledge hit returns the stored answer untouched", func() {
			res, err := router.Route(ctx, nil, "bagaimana mengatasi hama wereng di sawah", nil)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, SourceKnowledgeBase)
			So(res.Reply, ShouldEqual, werengEntry.Answer)
			So(vision.calls, ShouldEqual, 0)
			So(text.calls, ShouldEqual, 0)
		})

		Convey("a single keyword overlap is not enough to answer from the knowledge base", func() {
			res, err := router.Route(ctx, nil, "apakah wereng berbahaya untuk manusia", nil)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, SourceGenerative)
			So(text.calls, ShouldEqual, 1)
		})

		Convey("an unavailable knowledge base degrades to the text provider", func() {
			knowledge.err = errors.New("redis and postgres both down")
			res, err := router.Route(ctx, nil, "bagaimana mengatasi hama wereng", nil)
			So(err, ShouldBeNil)
			So(res.Source, ShouldEqual, SourceGenerative)
			So(res.Reply, ShouldEqual, text.reply)
		})

		Convey("history is remapped for the text provider, not for vision", func() {
			history := []model.Message{
				{Role: model.RoleUser, Content: "halo"},
				{Role: model.RoleModel, Content: "halo juga"},
			}

			_, err := router.Route(ctx, history, "pertanyaan bebas tanpa kata kunci", nil)
			So(err, ShouldBeNil)
			So(text.lastHistory[1].Role, ShouldEqual, model.RoleAssistant)

			att := &model.Attachment{Data: []byte("img"), MIMEType: "image/png", Filename: "f.png"}
			_, err = router.Route(ctx, history, "", att)
			So(err, ShouldBeNil)

			Convey("and the original slice is not mutated", func() {
				So(history[1].Role, ShouldEqual, model.RoleModel)
			})
		})

		Convey("provider errors pass through unchanged", func() {
			text.err = fmt.Errorf("%w: status 429", ai.ErrQuotaExceeded)
			_, err := router.Route(ctx, nil, "pertanyaan bebas", nil)
			So(errors.Is(err, ai.ErrQuotaExceeded), ShouldBeTrue)
		})
	})
}
