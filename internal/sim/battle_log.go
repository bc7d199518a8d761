package sim

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	recordBufferSize   = 512                    // circular buffer slots
	maxRecordsPerSec   = 2000                   // global rate limit
	batchFlushSize     = 64                     // records per batch write
	batchFlushInterval = 100 * time.Millisecond // how often to flush
)

// BattleLog is a bounded, rate-limited audit log of battle records, written
// asynchronously as newline-delimited JSON. Emitting never blocks the turn
// loop: when the buffer is full the oldest records are dropped.
type BattleLog struct {
	buffer    [recordBufferSize]Record
	writeHead uint64 // atomic, producer position
	readHead  uint64 // atomic, consumer position

	limiter *rate.Limiter

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	file   *os.File
	fileMu sync.Mutex

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

// NewBattleLog creates a log. Call Start to begin writing.
func NewBattleLog() *BattleLog {
	return &BattleLog{
		limiter:  rate.NewLimiter(maxRecordsPerSec, maxRecordsPerSec/10),
		stopChan: make(chan struct{}),
	}
}

// Start opens the output file (append mode) and launches the async writer.
// An empty path keeps the log in-memory only; records are still counted.
func (bl *BattleLog) Start(filePath string) error {
	if bl.running.Load() {
		return nil
	}

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		bl.file = file
	}

	bl.running.Store(true)
	bl.writerWg.Add(1)
	go bl.writerLoop()
	return nil
}

// Stop flushes pending records and closes the file. Safe to call twice.
func (bl *BattleLog) Stop() {
	bl.stopOnce.Do(func() {
		bl.running.Store(false)
		close(bl.stopChan)
		bl.writerWg.Wait()

		bl.fileMu.Lock()
		if bl.file != nil {
			bl.file.Close()
		}
		bl.fileMu.Unlock()
	})
}

// Emit appends a record. Returns false when rate limited or stopped.
func (bl *BattleLog) Emit(rec Record) bool {
	if !bl.running.Load() {
		return false
	}
	if !bl.limiter.Allow() {
		atomic.AddUint64(&bl.droppedCount, 1)
		return false
	}

	head := atomic.AddUint64(&bl.writeHead, 1)
	tail := atomic.LoadUint64(&bl.readHead)

	// Full buffer: advance the read head, dropping the oldest record.
	if head-tail >= recordBufferSize {
		atomic.AddUint64(&bl.readHead, 1)
		atomic.AddUint64(&bl.droppedCount, 1)
	}

	// Sequence numbers are 1-based; slot k holds the record with
	// sequence k+1 so the reader can start from tail 0.
	rec.Sequence = head
	bl.buffer[(head-1)%recordBufferSize] = rec

	atomic.AddUint64(&bl.totalCount, 1)
	return true
}

func (bl *BattleLog) writerLoop() {
	defer bl.writerWg.Done()

	ticker := time.NewTicker(batchFlushInterval)
	defer ticker.Stop()

	batch := make([]Record, 0, batchFlushSize)
	for {
		select {
		case <-bl.stopChan:
			// Final flush.
			for {
				batch = bl.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				bl.flushBatch(batch)
			}
		case <-ticker.C:
			batch = bl.collectBatch(batch[:0])
			if len(batch) > 0 {
				bl.flushBatch(batch)
			}
		}
	}
}

func (bl *BattleLog) collectBatch(batch []Record) []Record {
	head := atomic.LoadUint64(&bl.writeHead)
	tail := atomic.LoadUint64(&bl.readHead)

	for i := tail; i < head && len(batch) < batchFlushSize; i++ {
		batch = append(batch, bl.buffer[i%recordBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&bl.readHead, uint64(len(batch)))
	}
	return batch
}

func (bl *BattleLog) flushBatch(batch []Record) {
	bl.fileMu.Lock()
	defer bl.fileMu.Unlock()

	if bl.file == nil {
		return
	}
	for _, rec := range batch {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		bl.file.Write(data)
		bl.file.Write([]byte("\n"))
	}
}

// Stats returns counters for monitoring.
func (bl *BattleLog) Stats() map[string]interface{} {
	head := atomic.LoadUint64(&bl.writeHead)
	tail := atomic.LoadUint64(&bl.readHead)
	return map[string]interface{}{
		"total":   atomic.LoadUint64(&bl.totalCount),
		"dropped": atomic.LoadUint64(&bl.droppedCount),
		"pending": head - tail,
		"running": bl.running.Load(),
	}
}
