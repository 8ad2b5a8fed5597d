package exchange

import (
	"context"
	"encoding/json"
	"log"
)

// publishEvent fans a domain event out to the realtime broadcast channel so
// an open gallery can refresh without polling. No-op when redis is not
// configured; a failed publish never fails the request.
func (s *Server) publishEvent(ctx context.Context, eventType string, payload any) {
	if s.rdb == nil {
		return
	}

	body := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return
	}

	if err := s.rdb.Publish(ctx, "broadcast", string(data)).Err(); err != nil {
		log.Printf("album-exchange: publish %s: %v", eventType, err)
	}
}
