package squadtype

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

type file struct {
	SquadTypes []domain.SquadType `yaml:"squad_types"`
}

// Registry 保存所有配置好的小队类型，顺序与配置文件中的顺序一致
type Registry struct {
	mu    sync.RWMutex
	path  string
	types []domain.SquadType
}

func NewRegistry(types []domain.SquadType) *Registry {
	return &Registry{types: types}
}

// Load 从 yaml 文件读取小队类型，文件不存在时返回空的 Registry（此时只有 default 可用）
func Load(path string) (*Registry, error) {
	r := &Registry{path: path}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func parse(data []byte) ([]domain.SquadType, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(f.SquadTypes))
	for i, st := range f.SquadTypes {
		if st.Handle == "" {
			return nil, fmt.Errorf("第 %d 个小队类型缺少 handle", i+1)
		}
		if _, exists := seen[st.Handle]; exists {
			return nil, fmt.Errorf("小队类型 %s 重复", st.Handle)
		}
		seen[st.Handle] = struct{}{}
		if st.Size <= 0 {
			return nil, fmt.Errorf("小队类型 %s 的人数必须大于 0", st.Handle)
		}
		if len(st.SpecialRoles) > st.Size {
			return nil, fmt.Errorf("小队类型 %s 的特殊位置数量超过了小队人数", st.Handle)
		}
	}

	return f.SquadTypes, nil
}

func (r *Registry) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.mu.Lock()
			r.types = nil
			r.mu.Unlock()
			return nil
		}
		return err
	}

	types, err := parse(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.types = types
	r.mu.Unlock()
	return nil
}

// SquadTypes 返回当前配置的快照
func (r *Registry) SquadTypes() []domain.SquadType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.SquadType, len(r.types))
	copy(types, r.types)
	return types
}

// FirstEnabledHandle 返回第一个启用的小队类型，没有的话返回 default
func (r *Registry) FirstEnabledHandle() string {
	return FirstEnabledHandle(r.SquadTypes())
}

func FirstEnabledHandle(types []domain.SquadType) string {
	for _, st := range types {
		if st.Enabled {
			return st.Handle
		}
	}
	return domain.DefaultSquadHandle
}

// Lookup 根据 handle 查找小队类型，default 即使没有配置也总是可以找到
func (r *Registry) Lookup(handle string) (domain.SquadType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, st := range r.types {
		if st.Handle == handle {
			return st, true
		}
	}
	if handle == domain.DefaultSquadHandle {
		return domain.DefaultSquadType(), true
	}
	return domain.SquadType{}, false
}

// SetEnabled 只修改内存中的配置，不会写回文件
func (r *Registry) SetEnabled(handle string, enabled bool) (domain.SquadType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.types {
		if r.types[i].Handle == handle {
			r.types[i].Enabled = enabled
			return r.types[i], true
		}
	}
	return domain.SquadType{}, false
}

// Watch 监听配置文件的变化并重新加载，直到 ctx 被取消
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// 监听目录而不是文件，这样编辑器通过重命名保存文件时也能收到事件
	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := r.reload(); err != nil {
				slog.Error("重新加载小队类型失败", "path", r.path, "error", err)
				continue
			}
			slog.Info("已重新加载小队类型", "path", r.path, "enabled", r.FirstEnabledHandle())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("监听小队类型文件出错", "error", err)
		}
	}
}
