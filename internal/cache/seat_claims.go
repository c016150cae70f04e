package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"

	apperrors "stagesight/pkg/app_errors"
	"stagesight/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SeatClaimManager interface {
	// 預熱：將資料庫中已訂出的座位載入 Redis
	WarmUp(ctx context.Context, showID uuid.UUID, seatIDs []string) error
	// 佔位：全部座位都未被佔用才一次佔用 (使用Lua腳本確保原子性)
	Claim(ctx context.Context, showID uuid.UUID, seatIDs []string) error
	// 釋放：訂位寫入失敗或被刪除時釋放座位
	Release(ctx context.Context, showID uuid.UUID, seatIDs []string) error
	// 獲取：目前已被佔用的座位
	ClaimedSeats(ctx context.Context, showID uuid.UUID) ([]string, error)
}

type RedisSeatClaimManagerImpl struct {
	client *redis.Client
}

func NewRedisSeatClaimManager(client *redis.Client) SeatClaimManager {
	return &RedisSeatClaimManagerImpl{
		client: client,
	}
}

// 已佔用座位的 key
func ClaimsKey(showID uuid.UUID) string {
	return fmt.Sprintf("show:%s:claimed", showID)
}

const claimSeatsScript = `
	local claimed_key = KEYS[1]

	-- 1. 任一座位已被佔用就整批失敗
	for i = 1, #ARGV do
		if redis.call('SISMEMBER', claimed_key, ARGV[i]) == 1 then
			return {0, ARGV[i]}
		end
	end

	-- 2. 全部佔用
	for i = 1, #ARGV do
		redis.call('SADD', claimed_key, ARGV[i])
	end

	return {1, ''}
`

func (m *RedisSeatClaimManagerImpl) WarmUp(ctx context.Context, showID uuid.UUID, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	return m.client.SAdd(ctx, ClaimsKey(showID), toArgs(seatIDs)...).Err()
}

func (m *RedisSeatClaimManagerImpl) Claim(ctx context.Context, showID uuid.UUID, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return apperrors.ErrNoSeatsSelected
	}

	result, err := m.client.Eval(ctx, claimSeatsScript, []string{ClaimsKey(showID)}, toArgs(seatIDs)...).Result()
	if err != nil {
		return err
	}

	resSlice, ok := result.([]interface{})
	if !ok || len(resSlice) != 2 {
		return errors.New("unexpected result")
	}
	code, _ := resSlice[0].(int64)
	seat, _ := resSlice[1].(string)

	switch code {
	case 1:
		return nil
	case 0:
		logger.WithComponent("cache").Info("seat already claimed",
			zap.String("show_id", showID.String()),
			zap.String("seat_id", seat),
		)
		return fmt.Errorf("%w: %s", apperrors.ErrSeatUnavailable, seat)
	default:
		return errors.New("unexpected result")
	}
}

func (m *RedisSeatClaimManagerImpl) Release(ctx context.Context, showID uuid.UUID, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	return m.client.SRem(ctx, ClaimsKey(showID), toArgs(seatIDs)...).Err()
}

func (m *RedisSeatClaimManagerImpl) ClaimedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	seats, err := m.client.SMembers(ctx, ClaimsKey(showID)).Result()
	if err == redis.Nil {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(seats)
	return seats, nil
}

func toArgs(ids []string) []interface{} {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
