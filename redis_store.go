package main

import (
	"encoding/json"
	"fmt"
	"log"

	redis "github.com/redis/go-redis/v9"
)

func initRedis() {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: RedisPassword,
		DB:       RedisDB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		log.Printf("⚠️  Redis not available, using in-memory job state only: %v", err)
		redisClient = nil
	} else {
		log.Println("✅ Redis connected successfully")
	}
}

func saveJobToRedis(job *DownloadJob) error {
	if redisClient == nil {
		return nil
	}
	jobData, err := json.Marshal(job)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("job:%s", job.ID)
	return redisClient.Set(ctx, key, jobData, JobExpiration).Err()
}

func getJobFromRedis(jobID string) (*DownloadJob, error) {
	if redisClient == nil {
		return nil, nil
	}
	key := fmt.Sprintf("job:%s", jobID)
	val, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var job DownloadJob
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func deleteJobFromRedis(jobID string) {
	if redisClient == nil {
		return
	}
	_ = redisClient.Del(ctx, fmt.Sprintf("job:%s", jobID)).Err()
}
