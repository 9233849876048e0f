package repository

import (
	"errors"
	"regexp"

	"mingle_chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// regexQuoteMeta 转义用户输入中的正则元字符，防止注入
func regexQuoteMeta(s string) string {
	return regexp.QuoteMeta(s)
}

// ParseObjectID 将路径参数中的字符串 id 转换为 ObjectID
// 格式非法返回 CodeInvalidFormat，与 NotFound 区分
func ParseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errorx.Wrapf(err, errorx.CodeInvalidFormat, "invalid id format %q", id)
	}
	return oid, nil
}

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - mongo.ErrNoDocuments -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}
