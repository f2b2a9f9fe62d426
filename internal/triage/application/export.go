package application

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// ExportRecord is the flat representation of one exported item.
type ExportRecord struct {
	ID                string    `json:"id"`
	Source            string    `json:"source"`
	Type              string    `json:"type"`
	Content           string    `json:"content"`
	Rating            *int      `json:"rating,omitempty"`
	Processed         bool      `json:"processed"`
	Responded         bool      `json:"responded"`
	CreatedAt         time.Time `json:"createdAt"`
	Sentiment         string    `json:"sentiment"`
	Confidence        float64   `json:"confidence"`
	UrgencyLevel      int       `json:"urgencyLevel"`
	Emotions          []string  `json:"emotions"`
	Keywords          []string  `json:"keywords"`
	SuggestedResponse string    `json:"suggestedResponse,omitempty"`
	CustomerID        string    `json:"customerId,omitempty"`
	CustomerName      string    `json:"customerName,omitempty"`
	CustomerEmail     string    `json:"customerEmail,omitempty"`
	CustomerPhone     string    `json:"customerPhone,omitempty"`
	CustomerTier      string    `json:"customerTier,omitempty"`
}

// ExportEnvelope is the JSON export document.
type ExportEnvelope struct {
	Format              ExportFormat   `json:"format"`
	GeneratedAt         time.Time      `json:"generatedAt"`
	TotalRecords        int            `json:"totalRecords"`
	IncludePersonalInfo bool           `json:"includePersonalInfo"`
	Data                []ExportRecord `json:"data"`
}

func NewExportRecord(item domain.TriagedFeedback) ExportRecord {
	fb := item.Feedback
	rec := ExportRecord{
		ID:            fb.ID,
		Source:        fb.Source.String(),
		Type:          fb.Type.String(),
		Content:       fb.Content.String(),
		Processed:     fb.Processed,
		Responded:     fb.Responded,
		CreatedAt:     fb.CreatedAt,
		Sentiment:     item.Sentiment().String(),
		UrgencyLevel:  item.UrgencyLevel(),
		Emotions:      []string{},
		Keywords:      []string{},
		CustomerID:    fb.CustomerInfo.ID,
		CustomerName:  fb.CustomerInfo.Name,
		CustomerEmail: fb.CustomerInfo.Email.String(),
		CustomerPhone: fb.CustomerInfo.Phone,
		CustomerTier:  fb.CustomerInfo.Tier,
	}
	if fb.Rating != nil {
		v := fb.Rating.Int()
		rec.Rating = &v
	}
	if a := item.Analysis; a != nil {
		rec.Confidence = a.Confidence
		rec.SuggestedResponse = a.SuggestedResponse
		rec.Emotions = append(rec.Emotions, a.Emotions...)
		rec.Keywords = append(rec.Keywords, a.Keywords...)
	}
	return rec
}

func NewExportEnvelope(result *ExportResult) ExportEnvelope {
	env := ExportEnvelope{
		Format:              ExportJSON,
		GeneratedAt:         result.GeneratedAt,
		TotalRecords:        result.TotalRecords,
		IncludePersonalInfo: result.IncludePersonalInfo,
		Data:                make([]ExportRecord, 0, len(result.Items)),
	}
	for _, item := range result.Items {
		env.Data = append(env.Data, NewExportRecord(item))
	}
	return env
}

var csvHeader = []string{
	"id", "source", "type", "content", "rating", "processed", "responded", "createdAt",
	"sentiment", "confidence", "urgencyLevel", "emotions", "keywords", "suggestedResponse",
}

var csvPersonalHeader = []string{"customerId", "customerName", "customerEmail", "customerPhone", "customerTier"}

// WriteCSV renders the export as CSV. Emotions and keywords are JSON arrays
// inside their cells. Customer columns appear only when personal info was requested.
func WriteCSV(w io.Writer, result *ExportResult) error {
	cw := csv.NewWriter(w)
	header := csvHeader
	if result.IncludePersonalInfo {
		header = append(append([]string{}, csvHeader...), csvPersonalHeader...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, item := range result.Items {
		rec := NewExportRecord(item)
		emotions, err := json.Marshal(rec.Emotions)
		if err != nil {
			return err
		}
		keywords, err := json.Marshal(rec.Keywords)
		if err != nil {
			return err
		}
		rating := ""
		if rec.Rating != nil {
			rating = strconv.Itoa(*rec.Rating)
		}
		row := []string{
			rec.ID,
			rec.Source,
			rec.Type,
			rec.Content,
			rating,
			strconv.FormatBool(rec.Processed),
			strconv.FormatBool(rec.Responded),
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.Sentiment,
			strconv.FormatFloat(rec.Confidence, 'f', 2, 64),
			strconv.Itoa(rec.UrgencyLevel),
			string(emotions),
			string(keywords),
			rec.SuggestedResponse,
		}
		if result.IncludePersonalInfo {
			row = append(row, rec.CustomerID, rec.CustomerName, rec.CustomerEmail, rec.CustomerPhone, rec.CustomerTier)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
