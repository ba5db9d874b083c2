package nakama

// RPC ids registered with Nakama.
const (
	RpcStart      = "battleship_start"
	RpcJoin       = "battleship_join"
	RpcShoot      = "battleship_shoot"
	RpcStatus     = "battleship_status"
	RpcReveal     = "battleship_reveal"
	RpcDelete     = "battleship_delete"
	RpcAdminToken = "battleship_admin_token"
)

// Storage collections. Both are owned by the system user.
const (
	CollectionGames    = "battleship_games"
	CollectionChannels = "battleship_channels"
)

// Runtime env keys read at module init.
const (
	EnvAdminSecret  = "battleship_admin_secret"
	EnvAdminUserIDs = "battleship_admin_user_ids"
	EnvConfigPath   = "battleship_config_path"

	AdminTokenIssuer = "battleship"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codeAlreadyExists      = 6
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeAborted            = 10
	codeOutOfRange         = 11
	codeInternal           = 13
)
