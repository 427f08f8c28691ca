package cache

import (
	"context"
	"errors"
	"time"

	"github.com/propview/realty-service/internal/user/domain"
	"github.com/redis/go-redis/v9"
)

// OTPStore keeps password-reset codes in redis, expiring them with the key
// TTL instead of any explicit sweep.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) SetOTP(ctx context.Context, email, otp string, ttl time.Duration) error {
	return s.client.Set(ctx, "otp:"+email, otp, ttl).Err()
}

func (s *OTPStore) GetOTP(ctx context.Context, email string) (string, error) {
	otp, err := s.client.Get(ctx, "otp:"+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidOTP
	}
	if err != nil {
		return "", err
	}
	return otp, nil
}

func (s *OTPStore) DeleteOTP(ctx context.Context, email string) error {
	return s.client.Del(ctx, "otp:"+email).Err()
}
