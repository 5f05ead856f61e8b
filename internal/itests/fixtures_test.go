package itests

import (
	"context"
	"fmt"
	"time"

	"BlogCMS/internal/auth"
	"BlogCMS/internal/db"
)

var (
	seededUserID int64
	seededTagIDs = map[string]int64{}
)

// seedFixtures loads one author, three tags and fifteen posts. Two posts
// carry distinctive titles the filter tests search for; the first two are
// the only ones tagged AI and Tech.
func seedFixtures() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := auth.HashPassword("itest-password")
	if err != nil {
		return err
	}
	if err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (full_name, email, password)
		VALUES ('Author One', 'author@example.com', $1)
		RETURNING id`, hash,
	).Scan(&seededUserID); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	tags := map[string][2]string{
		"AI":     {"AI", "IA"},
		"Tech":   {"Tech", "Tecnologia"},
		"Travel": {"Travel", "Viaggi"},
	}
	for key, names := range tags {
		var id int64
		if err := db.Pool.QueryRow(ctx, `
			INSERT INTO tags (name)
			VALUES (jsonb_build_object('en', $1::text, 'it', $2::text))
			RETURNING id`, names[0], names[1],
		).Scan(&id); err != nil {
			return fmt.Errorf("seed tag %s: %w", key, err)
		}
		seededTagIDs[key] = id
	}

	for i := 1; i <= 15; i++ {
		title := fmt.Sprintf("Post %02d", i)
		tag := "Travel"
		switch i {
		case 1:
			title = "Artificial Intelligence in Practice"
			tag = "AI"
		case 2:
			title = "Updated Title"
			tag = "Tech"
		}

		var postID int64
		if err := db.Pool.QueryRow(ctx, `
			INSERT INTO posts (user_id, title, short_description, content)
			VALUES ($1,
				jsonb_build_object('en', $2::text, 'it', $3::text),
				jsonb_build_object('en', 'Short', 'it', 'Breve'),
				jsonb_build_object('en', 'Body', 'it', 'Testo'))
			RETURNING id`,
			seededUserID, title, title+" (it)",
		).Scan(&postID); err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}

		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO post_tag (post_id, tag_id) VALUES ($1, $2)`,
			postID, seededTagIDs[tag]); err != nil {
			return fmt.Errorf("seed post_tag %d: %w", i, err)
		}
	}
	return nil
}

func dashboardToken() (string, error) {
	return auth.IssueToken(testCfg.Auth, seededUserID, "Author One")
}
