package service

import (
	"context"
	"sync"
)

// matrizCoherente 在 MatrizCache 之上维护按班次递增的失效代数
// 重建开始前记下代数，写回时代数已变说明期间有写操作提交，结果作废
type matrizCoherente struct {
	MatrizCache

	mu  sync.Mutex
	gen map[uint]uint64
}

// coherente 包装 cache；已包装的原样返回，nil 返回 nil
func coherente(cache MatrizCache) *matrizCoherente {
	switch c := cache.(type) {
	case nil:
		return nil
	case *matrizCoherente:
		return c
	default:
		return &matrizCoherente{MatrizCache: cache, gen: make(map[uint]uint64)}
	}
}

func (c *matrizCoherente) generacion(idFicha uint) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[idFicha]
}

// InvalidateMatriz 先推进代数再删除缓存
func (c *matrizCoherente) InvalidateMatriz(ctx context.Context, idFicha uint) error {
	c.mu.Lock()
	c.gen[idFicha]++
	c.mu.Unlock()
	return c.MatrizCache.InvalidateMatriz(ctx, idFicha)
}

// setSiVigente 仅当代数仍为 gen 时写入；写入后代数变化则撤回刚写入的内容
// 返回 false 表示结果已过期、未保留在缓存中
func (c *matrizCoherente) setSiVigente(ctx context.Context, idFicha uint, gen uint64, payload []byte) (bool, error) {
	if c.generacion(idFicha) != gen {
		return false, nil
	}
	if err := c.MatrizCache.SetMatriz(ctx, idFicha, payload); err != nil {
		return false, err
	}
	// SetMatriz 期间可能有失效已执行完删除
	if c.generacion(idFicha) != gen {
		return false, c.MatrizCache.InvalidateMatriz(ctx, idFicha)
	}
	return true, nil
}
