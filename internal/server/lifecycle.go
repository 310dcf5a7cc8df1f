package server

import (
	"context"
	"log"
	"runtime"
	"time"
)

// monitorStats 定期记录观战人数与运行状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			log.Printf("📊 [监控] 观战: %d/%d | Goroutines: %d | 内存: %.2f MB",
				s.hub.Count(),
				s.config.MaxSpectators,
				runtime.NumGoroutine(),
				float64(m.Alloc)/1024/1024)
		}
	}
}

// Shutdown 断开观战者并关闭 HTTP 服务
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.stop:
		return nil
	default:
		close(s.stop)
	}

	s.hub.Close()
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	log.Println("观战服务已关闭")
	return err
}
