package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"announcehub/pkg/logger"
)

var errPanic = errors.New("async: task panicked")

// Task 表示一个异步任务
type Task struct {
	Name    string
	Handler func(ctx context.Context) error
	Timeout time.Duration
}

// Result 表示任务执行结果
type Result struct {
	Name      string
	Error     error
	StartTime time.Time
	EndTime   time.Time
}

// Worker 异步任务处理器
//
// 任务只执行一次，失败不重试；队列满时Submit直接返回false，调用方不会被阻塞。
type Worker struct {
	taskQueue chan Task
	logger    *logger.Logger
	wg        sync.WaitGroup
	mu        sync.RWMutex
	stopped   bool
	onResult  func(Result)
}

// NewWorker 创建一个新的工作器
func NewWorker(queueSize int, logger *logger.Logger) *Worker {
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		logger:    logger,
	}
}

// OnResult 设置任务完成回调，需要在Start之前调用
func (w *Worker) OnResult(fn func(Result)) {
	w.onResult = fn
}

// Start 启动工作器
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止接收任务，等待队列中的任务执行完毕
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.taskQueue)
	w.mu.Unlock()

	w.wg.Wait()
}

// Submit 将任务加入队列，队列已满或工作器已停止时返回false
func (w *Worker) Submit(task Task) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return false
	}

	select {
	case w.taskQueue <- task:
		return true
	default:
		w.logger.Warn("任务队列已满，丢弃任务", "task", task.Name)
		return false
	}
}

// processTask 处理任务的工作循环
func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

// executeTask 执行单个任务
func (w *Worker) executeTask(task Task) {
	result := Result{
		Name:      task.Name,
		StartTime: time.Now(),
	}

	ctx := context.Background()
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	result.Error = w.run(ctx, task)
	result.EndTime = time.Now()

	if result.Error != nil {
		w.logger.Error("异步任务失败", "task", task.Name, result.Error)
	} else {
		w.logger.Debug("异步任务完成", "task", task.Name, "duration", result.EndTime.Sub(result.StartTime))
	}
	if w.onResult != nil {
		w.onResult(result)
	}
}

// run 执行任务处理函数，panic不影响工作协程
func (w *Worker) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("异步任务panic", "task", task.Name, "panic", r)
			err = errPanic
		}
	}()
	return task.Handler(ctx)
}
