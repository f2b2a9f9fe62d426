package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/multierr"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// FeedbackRepository はフィードバックと解析結果の 2 コレクションを MongoDB で扱うリポジトリ。
type FeedbackRepository struct {
	feedback           *mongo.Collection
	analyses           *mongo.Collection
	analysisCollection string
}

var _ application.FeedbackRepository = (*FeedbackRepository)(nil)

// NewFeedbackRepository はフィードバック・解析結果のコレクションを束縛したリポジトリを生成する。
func NewFeedbackRepository(db *mongo.Database, feedbackCollection, analysisCollection string) *FeedbackRepository {
	return &FeedbackRepository{
		feedback:           db.Collection(feedbackCollection),
		analyses:           db.Collection(analysisCollection),
		analysisCollection: analysisCollection,
	}
}

// EnsureIndexes は一覧・集計で使うインデックスを作成する。既存のものはそのまま。
func (r *FeedbackRepository) EnsureIndexes(ctx context.Context) error {
	feedbackIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "source", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}
	if _, err := r.feedback.Indexes().CreateMany(ctx, feedbackIndexes); err != nil {
		return fmt.Errorf("create feedback indexes: %w", err)
	}
	analysisIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sentiment", Value: 1}}},
		{Keys: bson.D{{Key: "urgencyLevel", Value: -1}}},
	}
	if _, err := r.analyses.Indexes().CreateMany(ctx, analysisIndexes); err != nil {
		return fmt.Errorf("create analysis indexes: %w", err)
	}
	return nil
}

// Create はフィードバックとプレースホルダー解析を登録する。解析の登録に失敗した場合はフィードバックを削除して戻す。
func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback, placeholder *domain.SentimentAnalysis) error {
	if feedback == nil {
		return errors.New("feedback payload is nil")
	}
	if _, err := r.feedback.InsertOne(ctx, mapFeedbackToDocument(feedback)); err != nil {
		return err
	}
	if placeholder == nil {
		return nil
	}
	if _, err := r.analyses.InsertOne(ctx, mapAnalysisToDocument(placeholder)); err != nil {
		if _, rollbackErr := r.feedback.DeleteOne(ctx, bson.M{"_id": feedback.ID}); rollbackErr != nil {
			err = multierr.Append(err, fmt.Errorf("rollback feedback %s: %w", feedback.ID, rollbackErr))
		}
		return err
	}
	return nil
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*domain.Feedback, error) {
	var doc FeedbackDocument
	if err := r.feedback.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateNotFound(err)
	}
	fb := mapFeedbackDocument(doc)
	return &fb, nil
}

func (r *FeedbackRepository) FindAnalysis(ctx context.Context, feedbackID string) (*domain.SentimentAnalysis, error) {
	var doc AnalysisDocument
	if err := r.analyses.FindOne(ctx, bson.M{"_id": feedbackID}).Decode(&doc); err != nil {
		return nil, translateNotFound(err)
	}
	return mapAnalysisDocument(doc), nil
}

// SaveAnalysis は解析結果を丸ごと置き換える。フィードバックが無い場合は ErrNotFound。
func (r *FeedbackRepository) SaveAnalysis(ctx context.Context, analysis *domain.SentimentAnalysis) error {
	count, err := r.feedback.CountDocuments(ctx, bson.M{"_id": analysis.FeedbackID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	doc := mapAnalysisToDocument(analysis)
	_, err = r.analyses.ReplaceOne(ctx, bson.M{"_id": doc.FeedbackID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *FeedbackRepository) UpdateSuggestedResponse(ctx context.Context, feedbackID, response string) error {
	result, err := r.analyses.UpdateByID(ctx, feedbackID, bson.M{"$set": bson.M{"suggestedResponse": response}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FeedbackRepository) SetProcessed(ctx context.Context, id string, value bool, at time.Time) error {
	return r.setFlag(ctx, id, "processed", value, at)
}

func (r *FeedbackRepository) SetResponded(ctx context.Context, id string, value bool, at time.Time) error {
	return r.setFlag(ctx, id, "responded", value, at)
}

func (r *FeedbackRepository) setFlag(ctx context.Context, id, field string, value bool, at time.Time) error {
	update := bson.M{"$set": bson.M{field: value, "updatedAt": at.UTC()}}
	result, err := r.feedback.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Find は $lookup で解析結果を結合し、緊急度順の 1 ページと総件数を返す。
func (r *FeedbackRepository) Find(ctx context.Context, filter application.FeedbackFilter, paging application.Paging) ([]domain.TriagedFeedback, int, error) {
	cursor, err := r.feedback.Aggregate(ctx, listPipeline(r.analysisCollection, filter, paging))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var result struct {
		Items []triagedDocument `bson:"items"`
		Total []struct {
			Count int `bson:"count"`
		} `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return nil, 0, err
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}

	items := make([]domain.TriagedFeedback, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, mapTriagedDocument(doc))
	}
	total := 0
	if len(result.Total) > 0 {
		total = result.Total[0].Count
	}
	return items, total, nil
}

func (r *FeedbackRepository) ListWindow(ctx context.Context, window domain.TimeWindow) ([]domain.TriagedFeedback, error) {
	cursor, err := r.feedback.Aggregate(ctx, windowPipeline(r.analysisCollection, window))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]domain.TriagedFeedback, 0)
	for cursor.Next(ctx) {
		var doc triagedDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, mapTriagedDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FeedbackRepository) ListPending(ctx context.Context, limit int) ([]string, error) {
	cursor, err := r.feedback.Aggregate(ctx, pendingPipeline(r.analysisCollection, limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete は解析結果、フィードバックの順に削除する。
func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.analyses.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	result, err := r.feedback.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Drop はデモデータ投入前に両コレクションを空にする。
func (r *FeedbackRepository) Drop(ctx context.Context) error {
	if err := r.analyses.Drop(ctx); err != nil {
		return err
	}
	return r.feedback.Drop(ctx)
}

func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
