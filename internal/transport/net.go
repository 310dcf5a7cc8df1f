package transport

import (
	"context"
	"errors"
	"log"
	"net"
	"time"
)

// 默认网络参数
const (
	DefaultSocketBuffer = 128 * 1024
	DefaultKeepAlive    = 15 * time.Second
	DefaultDialTimeout  = 5 * time.Second
)

// Options TCP 连接参数
type Options struct {
	SocketBuffer int           // 收发缓冲区大小（字节）
	KeepAlive    time.Duration // keep-alive 探测间隔
	DialTimeout  time.Duration
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		SocketBuffer: DefaultSocketBuffer,
		KeepAlive:    DefaultKeepAlive,
		DialTimeout:  DefaultDialTimeout,
	}
}

// Listener 接受帧化连接的监听器
type Listener struct {
	ln   net.Listener
	opts Options
}

// Listen 在 addr 上监听 TCP
func Listen(addr string, opts Options) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln, opts: opts}, nil
}

// Accept 接受下一个连接并设置 socket 选项
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	tune(c, l.opts)
	return NewConn(c), nil
}

// Addr 实际监听地址
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close 停止监听，阻塞中的 Accept 随之返回
func (l *Listener) Close() error {
	return l.ln.Close()
}

// IsClosed 错误是否由监听器关闭引起
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, ErrClosed)
}

// Dial 连接主机并设置 socket 选项
func Dial(ctx context.Context, addr string, opts Options) (*Conn, error) {
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	d := net.Dialer{
		Timeout:   timeout,
		KeepAlive: opts.KeepAlive,
	}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	tune(c, opts)
	return NewConn(c), nil
}

// tune 关闭 Nagle、开启 keep-alive、放大收发缓冲区
func tune(c net.Conn, opts Options) {
	tcp, ok := c.(*net.TCPConn)
	if !ok {
		return
	}
	if err := tcp.SetNoDelay(true); err != nil {
		log.Printf("⚠️ 设置 TCP_NODELAY 失败: %v", err)
	}
	if err := tcp.SetKeepAlive(true); err != nil {
		log.Printf("⚠️ 开启 keep-alive 失败: %v", err)
	}
	if opts.KeepAlive > 0 {
		_ = tcp.SetKeepAlivePeriod(opts.KeepAlive)
	}
	size := opts.SocketBuffer
	if size <= 0 {
		size = DefaultSocketBuffer
	}
	if err := tcp.SetReadBuffer(size); err != nil {
		log.Printf("⚠️ 设置接收缓冲区失败: %v", err)
	}
	if err := tcp.SetWriteBuffer(size); err != nil {
		log.Printf("⚠️ 设置发送缓冲区失败: %v", err)
	}
}
