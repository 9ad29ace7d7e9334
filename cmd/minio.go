package cmd

import (
	"context"
	"fmt"
	"log"

	"CupBack/config"
	"CupBack/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO bucket",
	Long:  `Connect to MinIO and list the objects stored under a prefix (post images by default).`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Connecting to MinIO server...")

		cfg := config.Load()
		fmt.Printf("MinIO config: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Could not connect to MinIO: %v", err)
		}
		fmt.Println("MinIO connection successful!")

		client := storage.GetMinioClient()
		ctx := context.Background()

		count := 0
		var totalSize int64
		for object := range client.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				log.Fatalf("Failed to list objects: %v", object.Err)
			}
			fmt.Printf("  %s (%d bytes)\n", object.Key, object.Size)
			count++
			totalSize += object.Size
		}
		fmt.Printf("%d objects, %d bytes total under prefix %q.\n", count, totalSize, minioPrefix)
	},
}

func init() {
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "posts/", "object prefix to list")
	rootCmd.AddCommand(minioCmd)
}
