package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"DailyFM/logger"
	"DailyFM/model"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Provider 外部曲库协作方：按年份区间批量拉歌，按 ID 查单曲。
// 任何失败都向上传播，绝不吞成空结果。
type Provider interface {
	FetchSongs(ctx context.Context, yearRange *model.YearRange) ([]model.Song, error)
	GetSongByID(ctx context.Context, id string) (*model.Song, error)
}

// Client 曲库 API 客户端，带限流和重试
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient 创建曲库客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		// 对上游保持温和的请求频率，避免触发限流
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

// songListResponse 曲库批量接口的响应体
type songListResponse struct {
	Code  int          `json:"code"`
	Songs []model.Song `json:"songs"`
	Msg   string       `json:"msg,omitempty"`
}

// FetchSongs 按年份区间拉取一批歌曲，yearRange 为 nil 时不过滤
func (c *Client) FetchSongs(ctx context.Context, yearRange *model.YearRange) ([]model.Song, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result songListResponse
	err := retry.Do(
		func() error {
			result = songListResponse{}
			req := c.http.R().SetContext(ctx).SetResult(&result)
			if yearRange != nil {
				if yearRange.StartYear > 0 {
					req.SetQueryParam("startYear", strconv.Itoa(yearRange.StartYear))
				}
				if yearRange.EndYear > 0 {
					req.SetQueryParam("endYear", strconv.Itoa(yearRange.EndYear))
				}
			}

			resp, err := req.Get("/songs")
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			if resp.IsError() {
				return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
			}
			if result.Code != 200 {
				return fmt.Errorf("provider error: %s (code: %d)", result.Msg, result.Code)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logger.Error("Failed to fetch songs from provider", logger.ErrorField(err))
		return nil, fmt.Errorf("fetch songs: %w", err)
	}

	logger.Info("Fetched songs from provider", logger.Int("count", len(result.Songs)))
	return result.Songs, nil
}

// GetSongByID 按 ID 查单曲元数据，曲库方没有这首歌时返回 (nil, nil)
func (c *Client) GetSongByID(ctx context.Context, id string) (*model.Song, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result songListResponse
	err := retry.Do(
		func() error {
			result = songListResponse{}
			resp, err := c.http.R().
				SetContext(ctx).
				SetQueryParam("id", id).
				SetResult(&result).
				Get("/song/detail")
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			if resp.IsError() {
				return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
			}
			if result.Code != 200 {
				return fmt.Errorf("provider error: %s (code: %d)", result.Msg, result.Code)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logger.Error("Failed to get song detail from provider",
			logger.String("songId", id), logger.ErrorField(err))
		return nil, fmt.Errorf("get song detail: %w", err)
	}

	if len(result.Songs) == 0 {
		return nil, nil
	}
	song := result.Songs[0]
	return &song, nil
}
