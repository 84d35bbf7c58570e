// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import "errors"

// ErrNothingToDo reports that an operation would not change the submission.
// Handlers answer it with the unchanged state.
var ErrNothingToDo = errors.New("submission: nothing to do")
