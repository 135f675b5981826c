package logging

import (
	"encoding/json"
	"log"
	"time"
)

const service = "storefront-service"

// Fields is one business event. Empty fields are omitted from the line.
type Fields struct {
	OrderID     int64  `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	Step        string `json:"step,omitempty"`
	Status      string `json:"status,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	Message     string `json:"message,omitempty"`
}

type line struct {
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Fields
}

// Event writes f as a single JSON line through the standard logger.
func Event(f Fields) {
	data, err := json.Marshal(line{
		Service:   service,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Fields:    f,
	})
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", service, err.Error())
		return
	}
	log.Print(string(data))
}
