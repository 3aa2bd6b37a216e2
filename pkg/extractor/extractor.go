package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/k4mimi/Proyecto-Alistamiento/config"
)

// Kind 抽取失败类别
type Kind string

const (
	KindSpawn   Kind = "spawn"   // 进程无法启动
	KindExit    Kind = "exit"    // 进程非零退出
	KindTimeout Kind = "timeout" // 超过配置的超时时间
	KindJSON    Kind = "json"    // 标准输出不是合法 JSON
	KindPayload Kind = "payload" // success=false
	KindSchema  Kind = "schema"  // data 与预期结构不符
)

// Error 外部抽取进程的结构化错误
// Details 保留原始诊断信息（stderr、解析错误），面向运维而非最终用户
type Error struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"error"`
	Details  string `json:"details"`
	ExitCode int    `json:"code,omitempty"`
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// AsError 从错误链中提取 *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

const waitDelay = time.Second

// Client 通过子进程调用 PDF 抽取脚本：<python> <script> <pdfPath> <mode>
type Client struct {
	pythonBin  string
	scriptPath string
	workDir    string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient 创建抽取客户端
func NewClient(cfg *config.ExtractorConfig, logger *zap.Logger) *Client {
	return &Client{
		pythonBin:  cfg.PythonBin,
		scriptPath: cfg.ScriptPath,
		workDir:    cfg.WorkDir,
		timeout:    cfg.Timeout,
		logger:     logger,
	}
}

// Extract 同步执行一次抽取并解析为强类型结果
func (c *Client) Extract(ctx context.Context, pdfPath string, mode Mode) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.pythonBin, c.scriptPath, pdfPath, string(mode))
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}
	// 脚本派生的子进程可能继续占用输出管道，超时 kill 后最多再等 waitDelay
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()

	if stderr.Len() > 0 {
		c.logger.Debug("抽取脚本日志", zap.String("mode", string(mode)), zap.String("stderr", stderr.String()))
	}

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, Message: "Tiempo de extracción agotado", Details: c.timeout.String()}
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &Error{
				Kind:     KindExit,
				Message:  "Error en el script Python",
				Details:  stderr.String(),
				ExitCode: exitErr.ExitCode(),
			}
		}
		return nil, &Error{Kind: KindSpawn, Message: "No se pudo ejecutar Python", Details: runErr.Error()}
	}

	c.logger.Info("抽取脚本执行完成",
		zap.String("mode", string(mode)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("stdout_bytes", stdout.Len()),
	)

	return Decode(stdout.Bytes())
}

// Decode 将脚本标准输出解析为 Result
func Decode(raw []byte) (*Result, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Kind: KindJSON, Message: "Error al parsear JSON de Python", Details: err.Error()}
	}
	if !env.Success {
		return nil, &Error{Kind: KindPayload, Message: "Python retornó error", Details: env.Error}
	}

	var result Result
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return &result, nil
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, &Error{Kind: KindSchema, Message: "Extracción con formato inválido", Details: err.Error()}
	}
	return &result, nil
}

var firstNumberRe = regexp.MustCompile(`\d+`)

// ExtraerNumeroHoras 取字符串中的第一个整数（如 "3120 horas" → 3120），没有则返回 nil
func ExtraerNumeroHoras(s string) *int {
	m := firstNumberRe.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}
