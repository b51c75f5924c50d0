// Integration test against a real PostgreSQL instance.
//
// Run with:
//
//	AGRIBUDDY_TEST_POSTGRES_DSN=postgres://postgres@localhost:5432/agribuddy_test?sslmode=disable go test ./internal/repository -v
//
// The test applies the schema itself and cleans up the rows it creates.
// Without the environment variable the test is skipped.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"agribuddy/internal/model"
	"agribuddy/internal/pkg/id"
	"agribuddy/internal/pkg/postgres"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("AGRIBUDDY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AGRIBUDDY_TEST_POSTGRES_DSN not set, skipping integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if err := postgres.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestConversationRepoIntegration(t *testing.T) {
	db := testDB(t)
	repo := NewConversationRepo(db)
	ctx := context.Background()
	userID := "it_user_" + id.New()

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM conversations WHERE user_id = $1`, userID)
	})

	Convey("ConversationRepo against PostgreSQL", t, func() {
		conv := &model.Conversation{
			ID:     id.New(),
			UserID: userID,
			Title:  "Hama Wereng Padi",
		}

		Convey("CreateWithExchange persists the conversation and both messages", func() {
			err := repo.CreateWithExchange(ctx, conv, "Bagaimana mengatasi wereng?", "Gunakan varietas tahan wereng.")
			So(err, ShouldBeNil)

			found, err := repo.FindByID(ctx, conv.ID)
			So(err, ShouldBeNil)
			So(found.Title, ShouldEqual, "Hama Wereng Padi")

			history, err := repo.History(ctx, conv.ID)
			So(err, ShouldBeNil)
			So(history, ShouldHaveLength, 2)
			So(history[0].Role, ShouldEqual, model.RoleUser)
			So(history[1].Role, ShouldEqual, model.RoleModel)

			Convey("AppendExchange keeps chronological order", func() {
				err := repo.AppendExchange(ctx, conv.ID, "Berapa dosisnya?", "250 kg per hektar.")
				So(err, ShouldBeNil)

				history, err := repo.History(ctx, conv.ID)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 4)
				So(history[2].Content, ShouldEqual, "Berapa dosisnya?")
				So(history[3].Content, ShouldEqual, "250 kg per hektar.")
			})

			Convey("ListByUserID returns the conversation", func() {
				convs, err := repo.ListByUserID(ctx, userID, 20, 0)
				So(err, ShouldBeNil)
				So(len(convs), ShouldBeGreaterThanOrEqualTo, 1)
			})

			Convey("Delete cascades to the messages", func() {
				So(repo.Delete(ctx, conv.ID), ShouldBeNil)

				_, err := repo.FindByID(ctx, conv.ID)
				So(errors.Is(err, ErrConversationNotFound), ShouldBeTrue)

				history, err := repo.History(ctx, conv.ID)
				So(err, ShouldBeNil)
				So(history, ShouldBeEmpty)
			})
		})

		Convey("AppendExchange on an unknown conversation reports not found", func() {
			err := repo.AppendExchange(ctx, id.New(), "halo", "halo juga")
			So(errors.Is(err, ErrConversationNotFound), ShouldBeTrue)
		})

		Convey("History of an unknown conversation is empty, not an error", func() {
			history, err := repo.History(ctx, id.New())
			So(err, ShouldBeNil)
			So(history, ShouldBeEmpty)
		})
	})
}
