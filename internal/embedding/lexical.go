package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// defaultLexicalDims 字符三元组哈希维度
const defaultLexicalDims = 256

// LexicalEngine 基于字符三元组的轻量比较器，不依赖模型
type LexicalEngine struct {
	dims int
}

// NewLexicalEngine 创建字符级引擎，dims <= 0 时使用默认维度
func NewLexicalEngine(dims int) *LexicalEngine {
	if dims <= 0 {
		dims = defaultLexicalDims
	}
	return &LexicalEngine{dims: dims}
}

// Embed 每个文本按词补边界后切分三元组并哈希到固定维度
func (e *LexicalEngine) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *LexicalEngine) vector(text string) []float32 {
	vec := make([]float32, e.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		runes := []rune(" " + w + " ")
		for i := 0; i+3 <= len(runes); i++ {
			h := fnv.New32a()
			_, _ = h.Write([]byte(string(runes[i : i+3])))
			vec[h.Sum32()%uint32(e.dims)]++
		}
	}
	return vec
}

// Name 引擎名称
func (e *LexicalEngine) Name() string {
	return "lexical"
}
