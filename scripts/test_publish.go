//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	reportID := flag.String("report", "", "Compliance report ID (rows are read from DB when set)")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.ValidateReportEvent{ReportID: uuid.New()}
	if *reportID != "" {
		id, err := uuid.Parse(*reportID)
		if err != nil {
			log.Fatalf("Invalid report ID: %v", err)
		}
		event.ReportID = id
	} else {
		// Vancouver и Calgary: одно оборудование в двух провинциях с пересекающимися периодами
		event.Rows = []domain.SupplyRow{
			{
				InstanceID:         "vancouver-jan",
				RegistrationNumber: "REG-001",
				SerialNumber:       "SN-001",
				Latitude:           domain.NewFlexFloat(49.2827),
				Longitude:          domain.NewFlexFloat(-123.1207),
				SupplyFrom:         "2024-01-01",
				SupplyTo:           "2024-01-31",
			},
			{
				InstanceID:         "calgary-jan",
				RegistrationNumber: "REG-001",
				SerialNumber:       "SN-001",
				Latitude:           domain.NewFlexFloat(51.0447),
				Longitude:          domain.NewFlexFloat(-114.0719),
				SupplyFrom:         "2024-01-15",
				SupplyTo:           "2024-02-15",
			},
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamValidateRequest,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamValidateRequest)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Report ID: %s\n", event.ReportID)
	fmt.Printf("   Rows: %d\n", len(event.Rows))

	fmt.Printf("\nWaiting for response in %s...\n", domain.StreamValidateDone)

	timeout := time.After(60 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for response")
			return
		case <-ticker.C:
			results, err := client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{domain.StreamValidateDone, "0"},
				Count:   100,
				Block:   -1,
			}).Result()
			if err != nil && err != redis.Nil {
				continue
			}

			for _, stream := range results {
				for _, msg := range stream.Messages {
					dataStr, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var done domain.ValidateDoneEvent
					if err := json.Unmarshal([]byte(dataStr), &done); err != nil {
						continue
					}
					if done.ReportID != event.ReportID {
						continue
					}

					fmt.Printf("\nResponse received\n")
					pretty, _ := json.MarshalIndent(done, "", "  ")
					fmt.Printf("%s\n", pretty)
					return
				}
			}
		}
	}
}
