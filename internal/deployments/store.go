// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package deployments

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kaleido-io/ctf-cli/pkg/types"
	"github.com/otiai10/copy"
)

var ErrNetworkNotFound = errors.New("no deployment record for network")

const recordExt = ".json"

// Store keeps one NetworkConfig document per network under a single directory.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path(network string) string {
	return filepath.Join(s.Dir, network+recordExt)
}

func (s *Store) CheckExists(network string) (bool, error) {
	_, err := os.Stat(s.Path(network))
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	} else {
		return true, nil
	}
}

func (s *Store) Load(network string) (*types.NetworkConfig, error) {
	if err := validateNetworkName(network); err != nil {
		return nil, err
	}
	path := s.Path(network)
	d, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w '%s' (%s)", ErrNetworkNotFound, network, path)
	} else if err != nil {
		return nil, err
	}
	var config *types.NetworkConfig
	if err := json.Unmarshal(d, &config); err != nil {
		return nil, fmt.Errorf("invalid deployment record %s: %w", path, err)
	}
	if config == nil {
		return nil, fmt.Errorf("invalid deployment record %s: empty document", path)
	}
	if config.Markets == nil {
		config.Markets = []*types.MarketRecord{}
	}
	return config, nil
}

// Save replaces the whole record. The document is written to a temporary file in the same
// directory and renamed over the old one, so readers see either the old or the new record.
func (s *Store) Save(network string, config *types.NetworkConfig) error {
	if err := validateNetworkName(network); err != nil {
		return err
	}
	if config.Markets == nil {
		config.Markets = []*types.MarketRecord{}
	}
	b, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, "."+network+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path(network))
}

// Backup copies the current record aside before it is replaced and returns the backup path.
func (s *Store) Backup(network string) (string, error) {
	src := s.Path(network)
	dst := fmt.Sprintf("%s.%d.bak", src, time.Now().UnixNano())
	if err := copy.Copy(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// AppendMarket re-reads the record, appends market after the existing entries and saves.
func (s *Store) AppendMarket(network string, market *types.MarketRecord) (*types.NetworkConfig, error) {
	config, err := s.Load(network)
	if err != nil {
		return nil, err
	}
	config.Markets = append(config.Markets, market)
	if err := s.Save(network, config); err != nil {
		return nil, err
	}
	return config, nil
}

func (s *Store) ListNetworks() ([]string, error) {
	files, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, err
	}
	networks := make([]string, 0)
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != recordExt {
			continue
		}
		networks = append(networks, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(networks)
	return networks, nil
}

func validateNetworkName(network string) error {
	if strings.TrimSpace(network) == "" {
		return errors.New("network name must not be empty")
	}
	if strings.ContainsAny(network, `/\`) || network == "." || network == ".." {
		return fmt.Errorf("invalid network name '%s'", network)
	}
	return nil
}
