package main

import (
	"os"
	"runtime/debug"
	"strconv"

	"github.com/containerd/cgroups"
	"github.com/containerd/cgroups/v3/cgroup2"
)

const defaultOsMemBytes = 20000000

// cgroupMemoryLimit reads the container memory limit, 0 when unknown.
func cgroupMemoryLimit() uint64 {
	if cgroups.Mode() != cgroups.Unified {
		logger.Debug().Msg("V1 cgroups")
		control, err := cgroups.Load(cgroups.V1, cgroups.StaticPath("/"))
		if err != nil {
			logger.Debug().Err(err).Msg("Failed to load cgroup")
			return 0
		}

		metrics, err := control.Stat(cgroups.IgnoreNotExist)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to stat cgroup")
			return 0
		}
		if metrics.Memory == nil || metrics.Memory.Usage == nil {
			return 0
		}
		return metrics.Memory.Usage.Limit
	}

	logger.Debug().Msg("V2 cgroups")
	control, err := cgroup2.Load("/")
	if err != nil {
		logger.Debug().Err(err).Msg("Failed to load cgroup")
		return 0
	}

	metrics, err := control.Stat()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to stat cgroup")
		return 0
	}
	if metrics.Memory == nil {
		return 0
	}
	return metrics.Memory.UsageLimit
}

// memoryLimit leaves osMemBytes of the container limit to the system. It
// returns 0 when GOMEMLIMIT is set explicitly or no usable limit is known.
func memoryLimit(goMemLimit string, cgroupLimit uint64, osMemBytes int64) int64 {
	if goMemLimit != "" || cgroupLimit == 0 {
		return 0
	}

	// unlimited cgroups report a value near MaxInt64
	if cgroupLimit > uint64(1<<62) {
		return 0
	}

	limit := int64(cgroupLimit) - osMemBytes
	if limit <= 0 {
		return 0
	}
	return limit
}

func configureMemoryLimit() {
	osMemBytes := int64(safeStringToInt(getEnv("MEM_BYTES", strconv.Itoa(defaultOsMemBytes)), defaultOsMemBytes))
	if osMemEnv := os.Getenv("OSMEMBYTES"); osMemEnv != "" {
		if value, err := strconv.ParseInt(osMemEnv, 10, 64); err == nil {
			osMemBytes = value
		}
	}

	goMemLimit := os.Getenv("GOMEMLIMIT")

	if limit := memoryLimit(goMemLimit, cgroupMemoryLimit(), osMemBytes); limit > 0 {
		logger.Info().Msgf("Setting memory limit automatically to %d bytes", limit)
		debug.SetMemoryLimit(limit)
	} else if goMemLimit != "" {
		logger.Info().Msgf("Memory limit set to %s", goMemLimit)
	}

	if gogc := os.Getenv("GOGC"); gogc != "" {
		logger.Info().Msgf("GC percentage set to %s", gogc)
	}
}
