package piece

// DefaultPreviewSize 预览队列默认长度
const DefaultPreviewSize = 5

// Queue 预览队列：从 Source 惰性补充，只读地展示接下来的方块
type Queue struct {
	src  Source
	size int
	buf  []Kind
}

// NewQueue 创建预览队列
func NewQueue(src Source, size int) *Queue {
	if size <= 0 {
		size = DefaultPreviewSize
	}
	return &Queue{
		src:  src,
		size: size,
		buf:  make([]Kind, 0, size),
	}
}

// Peek 返回接下来的 size 个方块（副本）
func (q *Queue) Peek() []Kind {
	q.fill()
	return append([]Kind(nil), q.buf...)
}

// Next 弹出队首方块
func (q *Queue) Next() Kind {
	q.fill()
	k := q.buf[0]
	q.buf = q.buf[1:]
	return k
}

// Size 预览长度
func (q *Queue) Size() int {
	return q.size
}

func (q *Queue) fill() {
	for len(q.buf) < q.size {
		q.buf = append(q.buf, q.src.Next())
	}
}
