package grpc

import (
	"fmt"
	"time"

	"stock-ticker/pkg/models"

	"google.golang.org/protobuf/types/known/structpb"
)

func convertUpdateToProto(update *models.Update) (*structpb.Struct, error) {
	quotes := make([]interface{}, len(update.Quotes))
	for i, q := range update.Quotes {
		quotes[i] = map[string]interface{}{
			"id":            q.ID,
			"price":         q.Price,
			"change":        q.Change,
			"changePercent": q.ChangePercent,
		}
	}

	return structpb.NewStruct(map[string]interface{}{
		"id":        update.ID,
		"status":    update.Status,
		"text":      update.Text,
		"display":   update.Display,
		"timestamp": update.Timestamp.UTC().Format(time.RFC3339Nano),
		"quotes":    quotes,
	})
}

func convertUpdateFromProto(s *structpb.Struct) (*models.Update, error) {
	fields := s.GetFields()

	update := &models.Update{
		ID:      fields["id"].GetStringValue(),
		Status:  fields["status"].GetStringValue(),
		Text:    fields["text"].GetStringValue(),
		Display: fields["display"].GetStringValue(),
	}

	if ts := fields["timestamp"].GetStringValue(); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		update.Timestamp = parsed
	}

	for _, v := range fields["quotes"].GetListValue().GetValues() {
		q := v.GetStructValue().GetFields()
		update.Quotes = append(update.Quotes, models.Quote{
			ID:            q["id"].GetStringValue(),
			Price:         q["price"].GetNumberValue(),
			Change:        q["change"].GetNumberValue(),
			ChangePercent: q["changePercent"].GetNumberValue(),
		})
	}

	return update, nil
}
