// Package migration はローカルコレクションのクラウドへの一括移行を提供する。
// 移行はセッションが認証済みに遷移したとき、ログインイベントごとに1回だけ
// 実行される。
package migration

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PietOff/social-recipe-app/internal/model"
)

// ItemStatus は移行対象1件の状態を表す。
type ItemStatus string

const (
	// StatusPending は未処理の状態。
	StatusPending ItemStatus = "pending"
	// StatusSucceeded はクラウドへの作成に成功した状態。
	StatusSucceeded ItemStatus = "succeeded"
	// StatusFailed はクラウドへの作成に失敗した状態。
	StatusFailed ItemStatus = "failed"
)

// ItemResult は移行対象1件の結果を表す。
type ItemResult struct {
	Title  string     `json:"title"`
	Status ItemStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Summary は1回の移行実行の集計結果を表す。
// 失敗は黙って握りつぶさず、件数として呼び出し元に公開される。
type Summary struct {
	RunID     string       `json:"run_id"`
	Attempted int          `json:"attempted"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items"`
}

// LocalCollection はローカルコレクションの読み取りとクリアのインターフェース。
type LocalCollection interface {
	Load() model.Collection
	ReplaceAll(c model.Collection) error
}

// RemoteAdder はクラウドへのレシピ作成インターフェース。
type RemoteAdder interface {
	Add(ctx context.Context, token string, r model.Recipe) (model.Recipe, error)
}

// MetricsRecorder は移行結果のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordMigrationItem(status string)
}

// Coordinator はローカルコレクションをクラウドコレクションへ移行する。
//
// 移行はat-least-onceかつ非トランザクショナル:
//   - 各レシピは古い順に1件ずつ、前の呼び出しの完了を待ってから
//     クラウドへ作成される。クラウド側は作成時刻の降順で一覧を返すため、
//     古い順に作成することで移行後も新しい順の表示が保たれる（並列化しない）
//   - 途中で失敗しても後続の移行は継続する（短絡しない）
//   - 全件の試行後、成功数にかかわらずローカルコレクションは無条件に
//     クリアされる（失敗した分は失われる。リトライや移行台帳は持たない）
type Coordinator struct {
	local   LocalCollection
	remote  RemoteAdder
	metrics MetricsRecorder
	logger  *slog.Logger
}

// NewCoordinator はCoordinatorの新しいインスタンスを生成する。
func NewCoordinator(local LocalCollection, remote RemoteAdder, metrics MetricsRecorder, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		local:   local,
		remote:  remote,
		metrics: metrics,
		logger:  logger,
	}
}

// Run は移行を1回実行し、集計結果を返す。
// 失敗はサマリーに記録されるのみで、Run自体はエラーを返さない。
func (c *Coordinator) Run(ctx context.Context, token string) *Summary {
	col := c.local.Load()

	summary := &Summary{
		RunID:     uuid.New().String(),
		Attempted: len(col),
		Items:     make([]ItemResult, 0, len(col)),
	}

	c.logger.Info("ローカルコレクションの移行を開始",
		slog.String("run_id", summary.RunID),
		slog.Int("count", len(col)),
	)

	// ローカルコレクションは新しい順のため、末尾（最古）から作成する。
	// クラウド側のcreated_atが新しさに沿って昇順になり、降順一覧が
	// 移行前の表示順と一致する。
	for i := len(col) - 1; i >= 0; i-- {
		r := col[i]
		result := ItemResult{Title: r.Title, Status: StatusPending}

		if _, err := c.remote.Add(ctx, token, r); err != nil {
			result.Status = StatusFailed
			result.Detail = err.Error()
			summary.Failed++
			c.metrics.RecordMigrationItem(string(StatusFailed))
			c.logger.Error("レシピの移行に失敗、後続を継続",
				slog.String("run_id", summary.RunID),
				slog.String("title", r.Title),
				slog.String("error", err.Error()),
			)
		} else {
			result.Status = StatusSucceeded
			summary.Succeeded++
			c.metrics.RecordMigrationItem(string(StatusSucceeded))
		}

		summary.Items = append(summary.Items, result)
	}

	// 成功数にかかわらずローカルコレクションを無条件にクリアする
	if err := c.local.ReplaceAll(model.Collection{}); err != nil {
		c.logger.Error("移行後のローカルコレクションのクリアに失敗",
			slog.String("run_id", summary.RunID),
			slog.String("error", err.Error()),
		)
	}

	c.logger.Info("ローカルコレクションの移行が完了",
		slog.String("run_id", summary.RunID),
		slog.Int("attempted", summary.Attempted),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
	)

	return summary
}
