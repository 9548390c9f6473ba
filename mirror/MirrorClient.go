// Package mirror keeps copies of simg objects in other object stores.
//
// The simg service stays the source of truth: every write and delete goes to
// it first, and replicas only see operations the service accepted.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	simg "github.com/Nocturnalx/simg-client"
	"github.com/Nocturnalx/simg-client/internal/loadbalancing"
	"github.com/Nocturnalx/simg-client/pkg/filestorage"
)

// ReplicationMode defines how writes reach the replicas.
// SYNC_REPLICATION writes every replica before returning.
// ASYNC_REPLICATION writes replicas in the background; failures are logged.
type ReplicationMode int

const (
	SYNC_REPLICATION ReplicationMode = iota
	ASYNC_REPLICATION
)

// ReadStrategy defines the order in which replicas are read after the
// primary failed.
type ReadStrategy int

const (
	READ_PRIMARY_FIRST ReadStrategy = iota
	ROUND_ROBIN
)

// ReplicationError reports replicas that did not follow a successful primary
// operation. The primary result is still returned alongside it.
type ReplicationError struct {
	Operation string
	Failed    int
	Total     int
	Err       error
}

func (e *ReplicationError) Error() string {
	return fmt.Sprintf("mirror: %s failed on %d/%d replicas: %v", e.Operation, e.Failed, e.Total, e.Err)
}

func (e *ReplicationError) Unwrap() error { return e.Err }

type MirrorClient struct {
	primary         *simg.Client
	replicas        []filestorage.FileStorage
	replicationMode ReplicationMode
	lb              loadbalancing.LoadBalancer
	logger          *zap.Logger

	pending sync.WaitGroup
}

func NewMirrorClient(primary *simg.Client, replicationMode ReplicationMode, readStrategy ReadStrategy, replicas ...filestorage.FileStorage) (*MirrorClient, error) {
	if primary == nil {
		return nil, fmt.Errorf("primary client is nil")
	}

	switch replicationMode {
	case SYNC_REPLICATION, ASYNC_REPLICATION:
	default:
		return nil, fmt.Errorf("unsupported replication mode: %v", replicationMode)
	}

	var strategy loadbalancing.Strategy
	switch readStrategy {
	case READ_PRIMARY_FIRST:
		strategy = loadbalancing.CLASSIC
	case ROUND_ROBIN:
		strategy = loadbalancing.ROUND_ROBIN
	default:
		return nil, fmt.Errorf("unsupported read strategy: %v", readStrategy)
	}

	lb, err := loadbalancing.Factory{}.NewLoadBalancer(strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to create load balancer: %w", err)
	}

	for i, r := range replicas {
		if r == nil {
			return nil, fmt.Errorf("replica %d is nil", i)
		}
	}

	return &MirrorClient{
		primary:         primary,
		replicas:        replicas,
		replicationMode: replicationMode,
		lb:              lb,
		logger:          zap.NewNop(),
	}, nil
}

// SetLogger sets the sink for background replication failures.
func (m *MirrorClient) SetLogger(logger *zap.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Send uploads cmd to the primary, then copies the body to every replica.
// A primary failure is returned as is and nothing is replicated.
func (m *MirrorClient) Send(ctx context.Context, cmd simg.Command) (json.RawMessage, error) {
	payload, err := m.primary.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}

	body, _ := simg.PutBody(cmd)

	switch m.replicationMode {
	case ASYNC_REPLICATION:
		for _, replica := range m.replicas {
			m.pending.Add(1)
			go func(r filestorage.FileStorage) {
				defer m.pending.Done()
				if err := r.PutObject(context.Background(), cmd.Folder(), cmd.Filename(), bytes.NewReader(body)); err != nil {
					m.logger.Warn("async replication failed",
						zap.String("replica", fmt.Sprintf("%T", r)),
						zap.String("folder", cmd.Folder()),
						zap.String("filename", cmd.Filename()),
						zap.Error(err))
				}
			}(replica)
		}
		return payload, nil

	default:
		var errs []error
		for _, replica := range m.replicas {
			if err := replica.PutObject(ctx, cmd.Folder(), cmd.Filename(), bytes.NewReader(body)); err != nil {
				errs = append(errs, fmt.Errorf("[sync] PutObject failed on %T: %w", replica, err))
			}
		}
		if len(errs) > 0 {
			return payload, &ReplicationError{Operation: "put", Failed: len(errs), Total: len(m.replicas), Err: errors.Join(errs...)}
		}
		return payload, nil
	}
}

// Delete removes the object from the primary, then from every replica in
// parallel. Replicas that never had the object are not counted as failures.
func (m *MirrorClient) Delete(ctx context.Context, cmd simg.Command) (string, error) {
	filename, err := m.primary.Delete(ctx, cmd)
	if err != nil {
		return "", err
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, replica := range m.replicas {
		wg.Add(1)
		go func(r filestorage.FileStorage) {
			defer wg.Done()
			err := r.RemoveObject(ctx, cmd.Folder(), cmd.Filename())
			if err == nil || errors.Is(err, simg.ErrObjectNotFound) {
				return
			}
			mu.Lock()
			errs = append(errs, fmt.Errorf("RemoveObject failed on %T: %w", r, err))
			mu.Unlock()
		}(replica)
	}
	wg.Wait()

	if len(errs) > 0 {
		return filename, &ReplicationError{Operation: "remove", Failed: len(errs), Total: len(m.replicas), Err: errors.Join(errs...)}
	}
	return filename, nil
}

// Get reads from the primary and falls back to the replicas in the order
// chosen by the read strategy. When every source reports a missing object
// the error matches simg.ErrObjectNotFound.
func (m *MirrorClient) Get(ctx context.Context, folder, filename string) ([]byte, error) {
	data, err := m.primary.Get(ctx, folder, filename)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, simg.ErrConfiguration) {
		return nil, err
	}

	errs := []error{fmt.Errorf("primary: %w", err)}
	allNotFound := errors.Is(err, simg.ErrObjectNotFound)

	for _, i := range m.lb.Order(len(m.replicas)) {
		replica := m.replicas[i]
		data, err := readAll(ctx, replica, folder, filename)
		if err == nil {
			return data, nil
		}
		errs = append(errs, fmt.Errorf("replica %T: %w", replica, err))
		allNotFound = allNotFound && errors.Is(err, simg.ErrObjectNotFound)
	}

	if allNotFound {
		return nil, fmt.Errorf("mirror: get %s/%s: %w", folder, filename, simg.ErrObjectNotFound)
	}
	return nil, fmt.Errorf("mirror: get %s/%s failed on all sources: %w", folder, filename, errors.Join(errs...))
}

// Wait blocks until background replication started by Send has finished.
func (m *MirrorClient) Wait() {
	m.pending.Wait()
}

func readAll(ctx context.Context, storage filestorage.FileStorage, folder, filename string) ([]byte, error) {
	obj, err := storage.GetObject(ctx, folder, filename)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}
	return data, nil
}
