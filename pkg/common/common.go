package common

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const NA = "N/A"

var snowflakeNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	snowflakeNode = node
}

// UUID returns a random v4 uuid string
func UUID() string {
	return uuid.NewString()
}

// UUIDint64 returns a time ordered snowflake id
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

func IsEmptyOrNA(val string) bool {
	val = strings.TrimSpace(val)
	return val == "" || val == NA
}

// IfEmptyStr returns defval when src is blank
func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}
