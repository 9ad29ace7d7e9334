package cmd

import (
	"fmt"
	"log"

	"CupBack/config"
	"CupBack/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Verify that Redis is reachable and that basic read/write operations work.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Testing Redis connection...")

		cfg := config.Load()
		fmt.Printf("Redis config: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Could not connect to Redis: %v", err)
		}
		fmt.Println("Redis connection successful!")

		if err := db.TestRedis(); err != nil {
			log.Fatalf("Redis operations test failed: %v", err)
		}
		fmt.Println("Redis basic operations test successful!")

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
		fmt.Println("Redis test complete, connection closed.")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
