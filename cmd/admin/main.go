package main

import (
	"attorneyhub/backend/internal/api/middleware"
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  set-status <complaint_id> <status>   move a complaint to pending, under_review, resolved or dismissed
  sync-caps <user_id>                  recompute one user's capabilities
  sync-all                             recompute every user's capabilities
  clear-cache                          drop every cached entry
  grant-admin <user_id>                give a user the administrator override
  revoke-admin <user_id>               remove the administrator override
  issue-token <user_id> [hours]        print a session token for local testing`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if os.Args[1] == "issue-token" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin issue-token <user_id> [hours]")
			os.Exit(1)
		}
		hours := 24
		if len(os.Args) > 3 {
			if hours, err = strconv.Atoi(os.Args[3]); err != nil || hours <= 0 {
				fmt.Println("Invalid hours. Please provide a positive integer.")
				os.Exit(1)
			}
		}
		token, err := middleware.IssueSessionToken(cfg.SessionSecret, os.Args[2], time.Duration(hours)*time.Hour)
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
		return
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	ctx := context.Background()
	var c *cache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Printf("Warning: Redis unavailable (%v), cached entries will expire on their own.\n", err)
		rdb = nil
	} else {
		c = cache.New(cache.NewRedisBackend(rdb), zap.NewNop())
	}

	storageSvc := storage.NewStorageService(db, rdb)
	resolver := membership.NewResolver(storageSvc, storageSvc, c, zap.NewNop())

	switch os.Args[1] {
	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status>")
			os.Exit(1)
		}
		updated, err := setStatus(ctx, storageSvc, c, os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Error updating complaint: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", updated.ID, updated.Status)
	case "sync-caps":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin sync-caps <user_id>")
			os.Exit(1)
		}
		if err := resolver.SyncCapabilities(ctx, os.Args[2]); err != nil {
			log.Fatalf("Error syncing capabilities: %v", err)
		}
		fmt.Printf("Capabilities of %s: %v\n", os.Args[2], resolver.Capabilities(ctx, os.Args[2]).Strings())
	case "sync-all":
		// An explicit run ignores the once-a-day marker.
		if err := c.Forget(ctx, cache.SyncMarkerKey); err != nil {
			log.Fatalf("Error clearing sync marker: %v", err)
		}
		n, err := resolver.SyncAllUsers(ctx)
		if err != nil {
			log.Fatalf("Error syncing users: %v", err)
		}
		fmt.Printf("Synced %d users.\n", n)
	case "clear-cache":
		if err := c.ClearAll(ctx); err != nil {
			log.Fatalf("Error clearing cache: %v", err)
		}
		fmt.Println("Cache cleared.")
	case "grant-admin", "revoke-admin":
		if len(os.Args) != 3 {
			fmt.Printf("Usage: admin %s <user_id>\n", os.Args[1])
			os.Exit(1)
		}
		grant := os.Args[1] == "grant-admin"
		if err := setAdmin(ctx, storageSvc, c, os.Args[2], grant); err != nil {
			log.Fatalf("Error updating user: %v", err)
		}
		fmt.Printf("User %s admin: %t\n", os.Args[2], grant)
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

// setStatus runs an admin status change through the complaint lifecycle.
func setStatus(ctx context.Context, s storage.Storage, c *cache.Cache, complaintID, status string) (*models.Complaint, error) {
	st, err := complaint.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus(zap.NewNop())
	complaint.RegisterCacheInvalidation(bus, c)
	svc := complaint.NewService(s, nil, nil, bus, c, zap.NewNop())
	return svc.SetStatus(ctx, complaintID, st)
}

func setAdmin(ctx context.Context, s storage.Storage, c *cache.Cache, userID string, admin bool) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.IsAdmin = admin
	if err := s.SaveUser(ctx, user); err != nil {
		return err
	}
	c.ForgetUser(ctx, userID)
	return nil
}
