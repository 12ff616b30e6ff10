/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package wellknown

const (
	// TagPrefix is the prefix shared by every tag the downscaler reads or writes.
	// Keys are matched case-insensitively.
	TagPrefix = "downscaler:"

	// TagUptime overrides the default uptime schedule.
	TagUptime = TagPrefix + "uptime"

	// TagDowntime overrides the default downtime schedule.
	TagDowntime = TagPrefix + "downtime"

	// TagExclude excludes the resource from scaling when true.
	TagExclude = TagPrefix + "exclude"

	// TagExcludeUntil excludes the resource until the given RFC3339 instant.
	TagExcludeUntil = TagPrefix + "exclude-until"

	// TagDowntimeScale overrides the capacity percentage kept during downtime.
	TagDowntimeScale = TagPrefix + "downtime-scale"

	// TagOriginalCapacity records the capacity observed before the first downscale.
	// It is written and removed by the downscaler only.
	TagOriginalCapacity = TagPrefix + "original-capacity"

	// TagOriginalMinSize records the group minimum size lowered to allow a downscale.
	TagOriginalMinSize = TagPrefix + "original-min-size"
)
