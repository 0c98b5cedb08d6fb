/*
 * Copyright 2025 Wirelark Labs.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"

	"github.com/wirelark/fortidash/pkg/models"
)

// TopologyProvider exposes the fused views the API serves. The correlation
// engine is the production implementation.
type TopologyProvider interface {
	GetTopology(ctx context.Context) *models.TopologySnapshot
	GetConnectedDevices(ctx context.Context) *models.ConnectedDeviceSnapshot
	InvalidateTopologyCache()
	History() []models.SeriesPoint
	Configured() bool
	ApplianceHost() string
}
