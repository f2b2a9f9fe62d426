package mongo

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// windowMatch は半開区間 [From, To) を createdAt 条件へ変換する。
func windowMatch(window domain.TimeWindow) bson.M {
	createdAt := bson.M{}
	if !window.From.IsZero() {
		createdAt["$gte"] = window.From.UTC()
	}
	if !window.To.IsZero() {
		createdAt["$lt"] = window.To.UTC()
	}
	if len(createdAt) == 0 {
		return bson.M{}
	}
	return bson.M{"createdAt": createdAt}
}

// feedbackMatch はフィードバック側のフィールドだけで判定できる条件を組み立てる。
func feedbackMatch(filter application.FeedbackFilter) bson.M {
	match := windowMatch(filter.Window)
	if filter.Source != "" {
		match["source"] = filter.Source.String()
	}
	if filter.Type != "" {
		match["type"] = filter.Type.String()
	}
	if filter.Processed != nil {
		match["processed"] = *filter.Processed
	}
	if filter.Responded != nil {
		match["responded"] = *filter.Responded
	}
	return match
}

// sentimentMatch は結合後の解析結果に対する条件。解析が無いものは neutral 扱い。
func sentimentMatch(sentiment domain.Sentiment) bson.M {
	if sentiment == domain.SentimentNeutral {
		return bson.M{"analysis.sentiment": bson.M{"$in": bson.A{sentiment.String(), nil}}}
	}
	return bson.M{"analysis.sentiment": sentiment.String()}
}

func lookupAnalysisStages(analysisCollection string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         analysisCollection,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "analysis",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$analysis",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

// listPipeline は一覧用の集計パイプライン。緊急度降順、作成日時降順で並べ、$facet で件数とページを同時に取る。
func listPipeline(analysisCollection string, filter application.FeedbackFilter, paging application.Paging) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: feedbackMatch(filter)}},
	}
	pipeline = append(pipeline, lookupAnalysisStages(analysisCollection)...)
	if filter.Sentiment != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: sentimentMatch(filter.Sentiment)}})
	}
	page := bson.A{bson.M{"$skip": int64(paging.Offset)}}
	if paging.Limit > 0 {
		page = append(page, bson.M{"$limit": int64(paging.Limit)})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$addFields", Value: bson.M{
			"sortUrgency": bson.M{"$ifNull": bson.A{"$analysis.urgencyLevel", domain.MinUrgency}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "sortUrgency", Value: -1},
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: 1},
		}}},
		bson.D{{Key: "$facet", Value: bson.M{
			"items": page,
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	)
	return pipeline
}

// windowPipeline は集計対象期間の全件を古い順に返す。
func windowPipeline(analysisCollection string, window domain.TimeWindow) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: windowMatch(window)}},
	}
	pipeline = append(pipeline, lookupAnalysisStages(analysisCollection)...)
	return append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	}}})
}

// pendingPipeline は未解析 (プレースホルダーのみ、または解析レコード無し) の ID を古い順に返す。
func pendingPipeline(analysisCollection string, limit int) mongo.Pipeline {
	pipeline := lookupAnalysisStages(analysisCollection)
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: bson.M{"analysis.analyzedAt": nil}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "createdAt", Value: 1},
			{Key: "_id", Value: 1},
		}}},
	)
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	return append(pipeline, bson.D{{Key: "$project", Value: bson.M{"_id": 1}}})
}
