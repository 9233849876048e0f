package constants

const (
	CHANNEL_SIZE               = 100      // 通知事件通道大小
	FILE_MAX_SIZE              = 52428800 // 上传文件最大大小（50MB）
	REFRESH_TOKEN_EXPIRY_HOURS = 168      // Refresh Token 有效期（小时），168小时 = 7天
	PASSWORD_MIN_LEN           = 6        // 密码最小长度
	CHAT_LIST_CACHE_TTL_MIN    = 30       // 聊天列表缓存有效期（分钟）
)
