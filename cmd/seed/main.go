// Command seed fills a development database with fake users, posts, likes and comments.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/realtime"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/memory"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/mysql"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/storage"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

var topics = []string{"fintech", "ai", "saas", "climate", "health", "edtech", "b2b", "hiring"}

func main() {
	users := flag.Int("users", 10, "number of users")
	posts := flag.Int("posts", 30, "number of posts")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	config.Init()
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	gofakeit.Seed(*seed)

	ctx := context.Background()
	db, err := mysql.Open(ctx, mysql.DSN(config.AppConfig))
	if err != nil {
		util.Logger.Fatal("failed to connect to the database", zap.Error(err))
	}
	defer db.Close()

	uploader, err := storage.NewLocalStorage(config.AppConfig.LocalStoragePath, config.AppConfig.BackendURL)
	if err != nil {
		util.Logger.Fatal("failed to open local storage", zap.Error(err))
	}

	// Seeded activity does not notify anyone.
	quiet := events.NewDispatcher()
	broker := realtime.NewMemoryBroker()
	defer broker.Close()

	userService := service.NewUserService(mysql.NewUserRepository(db), memory.NewSessionStore(), uploader, nil)
	postService := service.NewPostService(mysql.NewCommunityRepository(db), broker, quiet)

	created := make([]*model.User, 0, *users)
	for i := 0; i < *users; i++ {
		u, err := userService.SignUp(ctx, gofakeit.Email(), "password123", gofakeit.Name())
		if err != nil {
			util.Logger.Warn("skipping user", zap.Error(err))
			continue
		}
		created = append(created, u)
	}
	if len(created) == 0 {
		util.Logger.Fatal("no users created")
	}

	var likes, comments int
	for i := 0; i < *posts; i++ {
		author := created[gofakeit.Number(0, len(created)-1)]
		post, err := postService.CreatePost(ctx, gofakeit.Sentence(6), fakeDescription(), author.ID, author.Display())
		if err != nil {
			util.Logger.Warn("skipping post", zap.Error(err))
			continue
		}

		for _, u := range created {
			if gofakeit.Bool() {
				if _, err := postService.ToggleLike(ctx, post.ID, u.ID); err == nil {
					likes++
				}
			}
		}
		for j := gofakeit.Number(0, 4); j > 0; j-- {
			commenter := created[gofakeit.Number(0, len(created)-1)]
			if _, err := postService.AddComment(ctx, post.ID, commenter.ID, gofakeit.Sentence(10)); err == nil {
				comments++
			}
		}
	}

	util.Logger.Info("seed complete",
		zap.Int("users", len(created)),
		zap.Int("posts", *posts),
		zap.Int("likes", likes),
		zap.Int("comments", comments),
	)
}

func fakeDescription() string {
	var b strings.Builder
	b.WriteString(gofakeit.Paragraph(1, 3, 12, " "))
	for i := gofakeit.Number(1, 3); i > 0; i-- {
		fmt.Fprintf(&b, " #%s", gofakeit.RandomString(topics))
	}
	return b.String()
}
