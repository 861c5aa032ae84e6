package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"
)

// Dalle 使用 OpenAI 图片接口生成配图
type Dalle struct {
	client    *openai.Client
	http      *http.Client
	model     string
	available bool
}

// NewDalle 创建 OpenAI 图片服务，apiKey 为空时 Available 返回 false
func NewDalle(baseURL, model, apiKey string) *Dalle {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &Dalle{
		client:    openai.NewClientWithConfig(clientConfig),
		http:      &http.Client{},
		model:     model,
		available: apiKey != "",
	}
}

// Name 返回服务名称
func (d *Dalle) Name() string { return "openai" }

// Available 报告凭证是否已配置
func (d *Dalle) Available() bool { return d.available }

// GenerateImage 生成一张横版图片，优先使用 base64 返回，没有时下载图片地址
func (d *Dalle) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if !d.available {
		return nil, ErrNotConfigured
	}

	resp, err := d.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          d.model,
		N:              1,
		Size:           openai.CreateImageSize1792x1024,
		Quality:        openai.CreateImageQualityStandard,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("请求图片生成失败: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("图片响应中没有数据")
	}

	item := resp.Data[0]
	if item.RevisedPrompt != "" {
		log.Debugf("图片提示词已被改写: %.100s", item.RevisedPrompt)
	}
	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("解码图片失败: %w", err)
		}
		return data, nil
	}
	if item.URL != "" {
		return d.download(ctx, item.URL)
	}
	return nil, fmt.Errorf("图片响应中没有图片")
}

func (d *Dalle) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载图片失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载图片失败，状态码: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
