package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	LLM    LLMConfig    `yaml:"llm"`
	Crew   CrewConfig   `yaml:"crew"`
	UI     UIConfig     `yaml:"ui"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"` // debug, release
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"` // 0 表示不限制，predict 需要等待两次 LLM 调用
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LLMConfig struct {
	APIURL      string        `yaml:"api_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type CrewConfig struct {
	Dir          string `yaml:"dir"`
	ResearchTask string `yaml:"research_task"`
	WriteTask    string `yaml:"write_task"`
}

type UIConfig struct {
	Enabled bool `yaml:"enabled"`
}

var (
	cfg    *Config
	cfgErr error
	once   sync.Once
)

// Path 返回配置文件路径，CONFIG_PATH 未设置时使用 config.yaml
func Path() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}

// GetConfig 返回进程级配置，首次调用时加载
// 配置文件无法解析或校验失败时返回错误，不会退回默认值
func GetConfig() (*Config, error) {
	once.Do(func() {
		cfg, cfgErr = Load(Path())
		if cfgErr != nil {
			klog.Errorf("加载配置失败: path=%s, error=%v", Path(), cfgErr)
		}
	})
	return cfg, cfgErr
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8000",
			Mode:            "debug",
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			APIURL:  "http://localhost:11434/v1",
			APIKey:  "ollama",
			Model:   "llama3",
			Timeout: 5 * time.Minute,
		},
		Crew: CrewConfig{
			ResearchTask: "research",
			WriteTask:    "write",
		},
		UI: UIConfig{
			Enabled: true,
		},
	}
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载配置
// 配置文件不存在时不报错
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
				return nil, fmt.Errorf("解析配置文件失败 %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *Config) error {
	// 环境变量优先级高于配置文件
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		config.LLM.APIURL = ollamaBaseURL(host)
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}
	if timeout := os.Getenv("LLM_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			klog.Errorf("LLM_TIMEOUT 无效: value=%s, error=%v", timeout, err)
			return fmt.Errorf("LLM_TIMEOUT 无效 %q: %w", timeout, err)
		}
		config.LLM.Timeout = d
	}

	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	if crewDir := os.Getenv("CREW_DIR"); crewDir != "" {
		config.Crew.Dir = crewDir
	}
	return nil
}

// ollamaBaseURL 把 OLLAMA_HOST（host:port 或完整 URL）转换为 OpenAI 兼容地址
func ollamaBaseURL(host string) string {
	host = strings.TrimRight(host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	if strings.HasSuffix(host, "/v1") {
		return host
	}
	return host + "/v1"
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port 不能为空")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model 不能为空")
	}
	if c.Crew.ResearchTask == "" || c.Crew.WriteTask == "" {
		return errors.New("crew.research_task 和 crew.write_task 不能为空")
	}
	if c.Crew.ResearchTask == c.Crew.WriteTask {
		return fmt.Errorf("crew.research_task 与 crew.write_task 不能相同: %s", c.Crew.ResearchTask)
	}
	return nil
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
