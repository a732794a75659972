package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// PostgresRecipeRepo はPostgreSQLを使用したクラウドコレクションリポジトリ。
// 材料・手順・タグは構造を問わないJSONB列として保存する。
type PostgresRecipeRepo struct {
	db *sql.DB
}

// NewPostgresRecipeRepo はPostgresRecipeRepoを生成する。
func NewPostgresRecipeRepo(db *sql.DB) *PostgresRecipeRepo {
	return &PostgresRecipeRepo{db: db}
}

// ListByUser は指定ユーザーのコレクションを新しい順で返す。
func (r *PostgresRecipeRepo) ListByUser(ctx context.Context, userID string) (model.Collection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, ingredients, instructions,
		        prep_time, cook_time, servings, image_url, tags, keywords, category
		 FROM recipes WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	collection := model.Collection{}
	for rows.Next() {
		var (
			recipe          model.Recipe
			ingredientsJSON []byte
			instructionsJSON []byte
			tagsJSON        []byte
			keywordsJSON    []byte
		)
		if err := rows.Scan(
			&recipe.ID, &recipe.Title, &recipe.Description,
			&ingredientsJSON, &instructionsJSON,
			&recipe.PrepTime, &recipe.CookTime, &recipe.Servings,
			&recipe.ImageURL, &tagsJSON, &keywordsJSON, &recipe.Category,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}

		if err := unmarshalColumn(ingredientsJSON, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to decode ingredients: %w", err)
		}
		if err := unmarshalColumn(instructionsJSON, &recipe.Instructions); err != nil {
			return nil, fmt.Errorf("failed to decode instructions: %w", err)
		}
		if err := unmarshalColumn(tagsJSON, &recipe.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		if err := unmarshalColumn(keywordsJSON, &recipe.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}

		collection = append(collection, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	return collection, nil
}

// Create はレシピをユーザーのコレクションに作成する。
// サーバー採番のIDを引数のレシピに書き戻す。
func (r *PostgresRecipeRepo) Create(ctx context.Context, userID string, recipe *model.Recipe) error {
	recipe.ID = uuid.New().String()

	ingredientsJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(recipe.Instructions)
	if err != nil {
		return fmt.Errorf("failed to encode instructions: %w", err)
	}
	tagsJSON, err := json.Marshal(recipe.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	keywordsJSON, err := json.Marshal(recipe.Keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO recipes (
			id, user_id, title, description, ingredients, instructions,
			prep_time, cook_time, servings, image_url, tags, keywords, category, created_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		recipe.ID, userID, recipe.Title, recipe.Description,
		ingredientsJSON, instructionsJSON,
		recipe.PrepTime, recipe.CookTime, recipe.Servings,
		recipe.ImageURL, tagsJSON, keywordsJSON, recipe.Category, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

// unmarshalColumn はNULL許容のJSONB列をデコードする。NULLはゼロ値のまま残す。
func unmarshalColumn(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// compile-time interface check
var _ RecipeRepository = (*PostgresRecipeRepo)(nil)
