// seed inserts a handful of users, follows, messages, and likes into the
// local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/perchhq/perch/internal/infrastructure/postgres"
)

const seedPassword = "password123"

type userSpec struct {
	username string
	email    string
	bio      string
}

var users = []userSpec{
	{"ada", "ada@perch.local", "systems and looms"},
	{"grace", "grace@perch.local", "debugging since 1947"},
	{"linus", "linus@perch.local", "just for fun"},
	{"margaret", "margaret@perch.local", "software engineering"},
}

// follower -> followed, by username
var follows = [][2]string{
	{"ada", "grace"},
	{"ada", "linus"},
	{"grace", "ada"},
	{"linus", "ada"},
	{"linus", "grace"},
	{"margaret", "ada"},
}

var messages = map[string][]string{
	"ada":      {"first post", "weaving algorithms today"},
	"grace":    {"found a moth in the relay", "ship code, not excuses"},
	"linus":    {"talk is cheap, show me the code"},
	"margaret": {"the software worked the first time"},
}

// liker -> author whose first message they like
var likes = [][2]string{
	{"grace", "ada"},
	{"linus", "ada"},
	{"ada", "grace"},
	{"margaret", "grace"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert users, idempotent across re-runs
	ids := make(map[string]int64, len(users))
	for _, spec := range users {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, bio)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			spec.username, spec.email, string(hash), spec.bio,
		).Scan(&id)
		if err != nil {
			log.Fatalf("upsert user %s: %v", spec.username, err)
		}
		ids[spec.username] = id
	}

	var followCount int
	for _, edge := range follows {
		tag, err := pool.Exec(ctx, `
			INSERT INTO follows (follower_id, followed_id)
			VALUES ($1, $2)
			ON CONFLICT (follower_id, followed_id) DO NOTHING`,
			ids[edge[0]], ids[edge[1]],
		)
		if err != nil {
			log.Fatalf("insert follow %s->%s: %v", edge[0], edge[1], err)
		}
		followCount += int(tag.RowsAffected())
	}

	// Track each author's first message so likes can point at it
	firstMessage := make(map[string]int64, len(messages))
	var messageCount int
	for username, texts := range messages {
		for i, text := range texts {
			var id int64
			err := pool.QueryRow(ctx, `
				WITH existing AS (
					SELECT id FROM messages WHERE user_id = $1 AND text = $2
				), inserted AS (
					INSERT INTO messages (user_id, text)
					SELECT $1, $2
					WHERE NOT EXISTS (SELECT 1 FROM existing)
					RETURNING id
				)
				SELECT id FROM inserted
				UNION ALL
				SELECT id FROM existing
				LIMIT 1`,
				ids[username], text,
			).Scan(&id)
			if err != nil {
				log.Fatalf("insert message for %s: %v", username, err)
			}
			if i == 0 {
				firstMessage[username] = id
			}
			messageCount++
		}
	}

	var likeCount int
	for _, edge := range likes {
		tag, err := pool.Exec(ctx, `
			INSERT INTO likes (user_id, message_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, message_id) DO NOTHING`,
			ids[edge[0]], firstMessage[edge[1]],
		)
		if err != nil {
			log.Fatalf("insert like %s->%s: %v", edge[0], edge[1], err)
		}
		likeCount += int(tag.RowsAffected())
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Users:    %d  (password %q for all)\n", len(users), seedPassword)
	fmt.Printf("  Follows:  %d new\n", followCount)
	fmt.Printf("  Messages: %d total\n", messageCount)
	fmt.Printf("  Likes:    %d new\n", likeCount)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in as ada:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/auth/login \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Printf("      -d '{\"username\":\"ada\",\"password\":\"%s\"}'\n", seedPassword)
	fmt.Println("    # → {\"token\":\"eyJ...\",\"user\":{...}}")
	fmt.Println()
	fmt.Println("  Step 2 — read the feed (ada follows grace and linus):")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/feed -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — edit the profile behind the reauth gate:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/auth/reauth \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Printf("      -d '{\"password\":\"%s\"}'\n", seedPassword)
	fmt.Println("    # → {\"reauth_token\":\"...\",\"expires_at\":\"...\"}")
	fmt.Println()
	fmt.Println("    curl -s -X PATCH http://localhost:8080/me \\")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" \\")
	fmt.Println("      -H 'X-Reauth-Token: REAUTH_TOKEN' \\")
	fmt.Println("      -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"username\":\"ada\",\"email\":\"ada@perch.local\",\"bio\":\"updated\"}'")
	fmt.Println()
	fmt.Println("  The reauth token is single use: repeat the PATCH and it answers 401.")
}
