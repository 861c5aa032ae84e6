package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// 各服务使用的环境变量名
const (
	Anthropic = "ANTHROPIC_API_KEY"
	OpenAI    = "OPENAI_API_KEY"
	Google    = "GOOGLE_API_KEY"
)

// ErrInvalidFormat 密钥格式不符合服务要求
var ErrInvalidFormat = errors.New("密钥格式无效")

// minKeyLength 任何服务的密钥都不应短于此长度
const minKeyLength = 20

var aliases = map[string][]string{
	Anthropic: {"CLAUDE_API_KEY"},
}

// Store 按名称查找凭证，.env 文件优先于进程环境变量
type Store struct {
	file map[string]string
	env  func(string) string
}

// NewStore 读取 envFile(不存在时忽略)并创建凭证查找器
func NewStore(envFile string) *Store {
	values, err := godotenv.Read(envFile)
	if err != nil {
		values = map[string]string{}
	}
	return &Store{file: values, env: os.Getenv}
}

// NewStoreFromMap 使用给定的键值创建凭证查找器，不读取进程环境
func NewStoreFromMap(values map[string]string) *Store {
	return &Store{file: values, env: func(string) string { return "" }}
}

// Lookup 返回凭证值，未配置或为占位符时返回空字符串
func (s *Store) Lookup(name string) string {
	for _, key := range append([]string{name}, aliases[name]...) {
		value := strings.TrimSpace(s.file[key])
		if value == "" {
			value = strings.TrimSpace(s.env(key))
		}
		if value != "" && !IsPlaceholder(value) {
			return value
		}
	}
	return ""
}

// Configured 报告凭证是否可用
func (s *Store) Configured(name string) bool {
	return s.Lookup(name) != ""
}

// Status 返回每个凭证的配置状态
func (s *Store) Status() map[string]bool {
	return map[string]bool{
		Anthropic: s.Configured(Anthropic),
		OpenAI:    s.Configured(OpenAI),
		Google:    s.Configured(Google),
	}
}

// IsPlaceholder 判断是否为示例配置中的占位值
func IsPlaceholder(value string) bool {
	if strings.HasPrefix(value, "your_") {
		return true
	}
	return strings.HasPrefix(value, "sk-") && len(value) < 20
}

// ValidateFormat 按服务检查密钥格式，不发起网络请求
func ValidateFormat(name, key string) error {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return fmt.Errorf("%w: 密钥为空", ErrInvalidFormat)
	case strings.HasPrefix(key, "your_"):
		return fmt.Errorf("%w: 仍是示例占位值", ErrInvalidFormat)
	case len(key) < minKeyLength:
		return fmt.Errorf("%w: 长度不足 %d", ErrInvalidFormat, minKeyLength)
	}

	switch name {
	case Anthropic:
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("%w: Anthropic 密钥应以 sk-ant- 开头", ErrInvalidFormat)
		}
	case OpenAI:
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("%w: OpenAI 密钥应以 sk- 开头", ErrInvalidFormat)
		}
	case Google:
		if len(key) < 30 {
			return fmt.Errorf("%w: Google 密钥长度不足 30", ErrInvalidFormat)
		}
	}
	return nil
}
