// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "3000"
	DefaultDBPath       = "gtstats.db"
	DefaultDataDir      = "./data"
	DefaultBaseURL      = "https://www.gran-turismo.com/nl/gtsport/module/community"
	DefaultAPIBaseURL   = "https://www.gran-turismo.com/nl/api/gt7sp"
	DefaultFetchDelay   = 100 * time.Millisecond
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryBase    = 1 * time.Second
	DefaultCORSOrigin   = "https://www.mtbparts.nl"
	DefaultRunHistLimit = 50
)

// Remote endpoint paths. The first three are plain GET content modules,
// the rest are POST endpoints dispatched on a "job" parameter.
const (
	PathLocalize     = "/localize/"
	PathMeta         = "/meta/"
	PathTags         = "/tags/"
	PathProfile      = "/profile/"
	PathCourseRecord = "/course_record/"
	PathEvent        = "/event/"
)

// Raw fetch outputs (persisted exactly as received)
const (
	FileLocalize      = "raw/localize.json"
	FileMeta          = "raw/meta.json"
	FileTags          = "raw/tags.json"
	FileEventCalendar = "raw/event/dailyrace_eventcalendar.json"

	DirCourseRecords = "raw/course_record"
	DirProfiles      = "raw/profile"
)

// Derived outputs (the contract consumed by the read routes)
const (
	FileCars          = "store/cars.json"
	FileCategories    = "store/categories.json"
	FileCourses       = "store/courses.json"
	FileCourseRanking = "store/courseranking.json"
	FileProfiles      = "store/profiles.json"
	FileDailyRaces    = "store/dailyraces.json"
	FileUsers         = "store/users.json"
)

// Localization key templates
const (
	CourseNamePrefix   = "gt7sp.game.COMMON.CourseName."
	CarClassNamePrefix = "gt7sp.game.COMMON.CarClassName.Label_"
	CarNameTable       = "car_name_en"
)

// Car categories are numbered 0..CarCategoryMax inclusive.
const CarCategoryMax = 16

// Watch debounce for the read routes, long enough to skip partial writes.
const WatchDebounce = 100 * time.Millisecond

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)
