//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/route-reconstructor/internal/domain"
)

func main() {
	redisAddr := pflag.String("redis", "localhost:6379", "Redis address for streams")
	asset := pflag.String("asset", "", "GPX asset name, empty means worker default")
	wait := pflag.Duration("wait", 30*time.Second, "how long to wait for the done event")
	pflag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.RouteReconstructEvent{
		RequestID: uuid.New(),
		Asset:     *asset,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Запоминаем хвост done-стрима до публикации, чтобы не читать старые ответы
	lastID := "$"
	if last, err := client.XRevRangeN(ctx, domain.StreamRouteDone, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamRouteReconstruct,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamRouteReconstruct)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Request ID: %s\n", event.RequestID)
	fmt.Printf("   Asset: %q\n", event.Asset)
	fmt.Printf("\nWaiting for response in %s...\n", domain.StreamRouteDone)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamRouteDone, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			log.Fatalf("Failed to read done stream: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var done domain.RouteReconstructDoneEvent
				if err := json.Unmarshal([]byte(dataStr), &done); err != nil {
					continue
				}
				if done.RequestID != event.RequestID {
					continue
				}

				fmt.Printf("\nResponse received\n")
				if done.Error != "" {
					fmt.Printf("   Error: %s\n", done.Error)
					for _, n := range done.Notifications {
						fmt.Printf("   Notification: %s\n", n)
					}
					return
				}
				fmt.Printf("   Track points: %d\n", done.TrackPoints)
				if done.Summary != nil {
					fmt.Printf("   Length: %d m, travel time: %d s\n",
						done.Summary.LengthInMeters, done.Summary.TravelTimeInSeconds)
				}
				fmt.Printf("   GeoJSON: %d bytes\n", len(done.GeoJSON))
				return
			}
		}
	}

	fmt.Println("Timeout waiting for response")
}
