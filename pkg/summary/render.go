/*
 * Copyright 2025 Carver Automation Corporation.
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

package summary

import (
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/fleetradar/pkg/messaging"
	"github.com/carverauto/fleetradar/pkg/registry"
)

// Category is one of the tracked notifications of an audience.
type Category int

const (
	CategoryOnline Category = iota
	CategoryWarning
	CategoryOffline
	CategoryFreshness

	categoryCount = 4
)

const (
	// DefaultMaxDescriptionLength is the Discord embed description budget.
	DefaultMaxDescriptionLength = 2000
	// MinDescriptionLength fits the truncation marker on its own.
	MinDescriptionLength = len(truncatedMarker)
)

const (
	emptyPlaceholder = "None"
	truncatedMarker  = "and more..."
	listSeparator    = ", "
)

//nolint:gochecknoglobals // fixed presentation table
var categoryStyles = map[Category]struct {
	title     string
	color     int
	thumbnail string
}{
	CategoryOnline: {
		title:     "Working Devices:",
		color:     0x008000,
		thumbnail: "https://raw.githubusercontent.com/Kneckter/RDMMonitor/master/static/ok.png",
	},
	CategoryWarning: {
		title:     "Warned Devices:",
		color:     0xFFFF00,
		thumbnail: "https://raw.githubusercontent.com/Kneckter/RDMMonitor/master/static/warned.png",
	},
	CategoryOffline: {
		title:     "Offline Devices:",
		color:     0xFF0000,
		thumbnail: "https://raw.githubusercontent.com/Kneckter/RDMMonitor/master/static/offline.png",
	},
}

// summaryCategories are reconciled in this order, freshness last.
//
//nolint:gochecknoglobals // fixed ordering
var summaryCategories = []Category{CategoryOnline, CategoryWarning, CategoryOffline}

func (c Category) String() string {
	switch c {
	case CategoryOnline:
		return "online"
	case CategoryWarning:
		return "warning"
	case CategoryOffline:
		return "offline"
	case CategoryFreshness:
		return "freshness"
	default:
		return "unknown"
	}
}

// State maps a summary category to the registry state it lists.
func (c Category) State() registry.State {
	switch c {
	case CategoryWarning:
		return registry.StateWarning
	case CategoryOffline:
		return registry.StateOffline
	default:
		return registry.StateOnline
	}
}

// RenderDeviceList joins device ids with ", ". When the joined list is longer
// than maxLen, devices are kept while the next one plus "and more..." still
// fits and the marker ends the text. An empty list renders as "None".
func RenderDeviceList(devices []string, maxLen int) string {
	if len(devices) == 0 {
		return emptyPlaceholder
	}

	if joined := strings.Join(devices, listSeparator); len(joined) <= maxLen {
		return joined
	}

	var b strings.Builder

	for _, device := range devices {
		if b.Len()+len(device)+len(listSeparator)+len(truncatedMarker) > maxLen {
			break
		}

		b.WriteString(device)
		b.WriteString(listSeparator)
	}

	b.WriteString(truncatedMarker)

	return b.String()
}

// RenderCategory builds the embed for one category.
func RenderCategory(category Category, devices []string, maxLen int) messaging.Content {
	style := categoryStyles[category]

	return messaging.Content{
		Embed: &messaging.Embed{
			Title:        style.title + " " + strconv.Itoa(len(devices)),
			Description:  RenderDeviceList(devices, maxLen),
			Color:        style.color,
			ThumbnailURL: style.thumbnail,
		},
	}
}

// RenderFreshness builds the "last updated" text notification.
func RenderFreshness(at time.Time) messaging.Content {
	return messaging.Content{
		Text: "Last updated at: **" + at.Format(messaging.TimestampLayout) + "**",
	}
}
